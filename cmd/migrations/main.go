package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/config"
	"github.com/vncsmyrnk/covervote/internal/logger"
)

const migrationsDir = "internal/adapters/repository/sqlmirror/migrations"

func main() {
	logCfg := logger.DefaultConfig("covervote-migrations")
	logCfg.Encoding = "console"
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load environment", zap.Error(err))
	}

	var dbURL, dir string
	flag.StringVar(&dbURL, "d", os.Getenv("DATABASE_URL"), "Database URL")
	flag.StringVar(&dir, "dir", migrationsDir, "Migrations directory")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("a migration name is required")
	}
	migrationName := flag.Arg(0)
	if dbURL == "" {
		log.Fatal("a database URL is required (use -d or DATABASE_URL env)")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	fileContent, err := migrationFileContent(dir, migrationName)
	if err != nil {
		log.Fatal("failed to read migration", zap.String("name", migrationName), zap.Error(err))
	}

	if _, err := db.Exec(string(fileContent)); err != nil {
		log.Fatal("failed to execute migration", zap.String("name", migrationName), zap.Error(err))
	}

	log.Info("migration executed", zap.String("name", migrationName))
}

func migrationFileContent(basePath string, migrationName string) ([]byte, error) {
	fileName, err := migrationFilePath(basePath, migrationName)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(basePath, fileName))
}

// migrationFilePath finds the first file in basePath whose name ends with migrationName.sql.
func migrationFilePath(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid migration name: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file %q not found in %s", migrationName, basePath)
}
