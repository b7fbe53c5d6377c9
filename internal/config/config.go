package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MirrorAuto     = "auto"
	MirrorSheets   = "sheets"
	MirrorPostgres = "postgres"
	MirrorSQLite   = "sqlite"
	MirrorNone     = "none"
)

type Config struct {
	Port       int
	RosterFile string
	Options    []string

	MirrorBackend      string
	SheetsID           string
	ServiceAccountFile string
	SheetsRange        string
	DatabaseURL        string
	SQLitePath         string
	SyncTimeout        time.Duration
	StartupSyncTimeout time.Duration

	AdminPassword string
	JWTSecret     string
	CORSOrigins   []string

	LogLevel    string
	LogEncoding string
}

// LoadDotEnv loads .env if present. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Parse reads flags from args, falling back to environment variables and then defaults.
func Parse(args []string) (Config, error) {
	var (
		cfg         Config
		options     string
		corsOrigins string
		syncTimeout string
		startupSync string
	)

	fs := flag.NewFlagSet("covervote", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.RosterFile, "roster", "", "Roster CSV file")
	fs.StringVar(&options, "options", "", "Comma separated option ids")
	fs.StringVar(&cfg.MirrorBackend, "mirror", "", "Vote mirror backend (auto, sheets, postgres, sqlite, none)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL for the postgres mirror")
	fs.StringVar(&cfg.SQLitePath, "sqlite", "", "File for the sqlite mirror")
	fs.StringVar(&syncTimeout, "sync-timeout", "", "Timeout for a single mirror append")
	fs.StringVar(&startupSync, "startup-sync-timeout", "", "Timeout for loading votes from the mirror at startup")
	fs.StringVar(&corsOrigins, "cors", "", "Comma separated allowed origins")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3000
		}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.RosterFile = firstNonEmpty(cfg.RosterFile, os.Getenv("ROSTER_FILE"), "idstudent.csv")

	cfg.Options = splitList(firstNonEmpty(options, os.Getenv("VOTE_OPTIONS"), "1,2,3,4,5,6"))
	if len(cfg.Options) == 0 {
		return Config{}, errors.New("at least one vote option is required")
	}

	cfg.MirrorBackend = strings.ToLower(firstNonEmpty(cfg.MirrorBackend, os.Getenv("MIRROR_BACKEND"), MirrorAuto))
	switch cfg.MirrorBackend {
	case MirrorAuto, MirrorSheets, MirrorPostgres, MirrorSQLite, MirrorNone:
	default:
		return Config{}, fmt.Errorf("unknown mirror backend %q", cfg.MirrorBackend)
	}

	cfg.SheetsID = os.Getenv("GOOGLE_SHEETS_ID")
	cfg.ServiceAccountFile = os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE")
	cfg.SheetsRange = firstNonEmpty(os.Getenv("SHEETS_RANGE"), "Votes")
	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	cfg.SQLitePath = firstNonEmpty(cfg.SQLitePath, os.Getenv("SQLITE_PATH"), "votes.db")

	if cfg.MirrorBackend == MirrorSheets && (cfg.SheetsID == "" || cfg.ServiceAccountFile == "") {
		return Config{}, errors.New("sheets mirror requires GOOGLE_SHEETS_ID and GOOGLE_SERVICE_ACCOUNT_KEY_FILE")
	}
	if cfg.MirrorBackend == MirrorPostgres && cfg.DatabaseURL == "" {
		return Config{}, errors.New("postgres mirror requires a database URL (use -d or DATABASE_URL env)")
	}

	var err error
	if cfg.SyncTimeout, err = parseDuration(firstNonEmpty(syncTimeout, os.Getenv("SYNC_TIMEOUT")), 10*time.Second); err != nil {
		return Config{}, fmt.Errorf("invalid sync timeout: %w", err)
	}
	if cfg.StartupSyncTimeout, err = parseDuration(firstNonEmpty(startupSync, os.Getenv("STARTUP_SYNC_TIMEOUT")), 30*time.Second); err != nil {
		return Config{}, fmt.Errorf("invalid startup sync timeout: %w", err)
	}

	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.AdminPassword != "" && cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required when ADMIN_PASSWORD is set")
	}

	cfg.CORSOrigins = splitList(firstNonEmpty(corsOrigins, os.Getenv("CORS_ORIGINS"), "*"))

	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info")
	cfg.LogEncoding = firstNonEmpty(os.Getenv("LOG_ENCODING"), "json")

	return cfg, nil
}

// SheetsConfigured reports whether both spreadsheet settings are present.
func (c Config) SheetsConfigured() bool {
	return c.SheetsID != "" && c.ServiceAccountFile != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}
