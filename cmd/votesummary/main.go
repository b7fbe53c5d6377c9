package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/adapters/mirror"
	"github.com/vncsmyrnk/covervote/internal/config"
	"github.com/vncsmyrnk/covervote/internal/core/services"
	"github.com/vncsmyrnk/covervote/internal/logger"
)

func main() {
	logCfg := logger.DefaultConfig("covervote-votesummary")
	logCfg.Encoding = "console"
	logCfg.Output = os.Stderr
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load environment", zap.Error(err))
	}

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	voteMirror, closeMirror, err := mirror.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open vote mirror", zap.Error(err))
	}
	defer closeMirror()

	log.Info("summarizing votes", zap.String("mirror", voteMirror.Name()))

	summary, err := services.NewSummaryService(voteMirror).SummarizeMirror(ctx)
	if err != nil {
		log.Fatal("failed to summarize votes", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		log.Fatal("failed to write summary", zap.Error(err))
	}
}
