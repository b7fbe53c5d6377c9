package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/adapters/broadcast"
	"github.com/vncsmyrnk/covervote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/covervote/internal/adapters/mirror"
	"github.com/vncsmyrnk/covervote/internal/adapters/roster"
	"github.com/vncsmyrnk/covervote/internal/config"
	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/services"
	"github.com/vncsmyrnk/covervote/internal/logger"
	"github.com/vncsmyrnk/covervote/internal/metrics"
	"github.com/vncsmyrnk/covervote/internal/resilience"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	logCfg := logger.DefaultConfig("covervote")
	logCfg.Level = cfg.LogLevel
	logCfg.Encoding = cfg.LogEncoding
	log, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	students, err := roster.LoadFile(cfg.RosterFile)
	if err != nil {
		log.Error("failed to load roster", zap.String("file", cfg.RosterFile), zap.Error(err))
		return err
	}
	metrics.RosterSize.Set(float64(students.Len()))
	log.Info("roster loaded",
		zap.String("file", cfg.RosterFile),
		zap.Int("voters", students.Len()),
		zap.Any("sample", students.Sample(3)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	voteMirror, closeMirror, err := mirror.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open vote mirror", zap.String("backend", cfg.MirrorBackend), zap.Error(err))
		return err
	}
	defer closeMirror()

	ledger := services.NewLedger(students, cfg.Options)
	hub := broadcast.NewHub(ledger.InitialData, log.Named("live"))
	ledger.OnCommit(func(r domain.Receipt) {
		hub.Publish(services.VoteUpdate(r))
	})

	syncService := services.NewSyncService(voteMirror, cfg.SyncTimeout, resilience.DefaultBreakerConfig(), log.Named("sync"))

	startupCtx, cancelStartup := context.WithTimeout(ctx, cfg.StartupSyncTimeout)
	_, _ = syncService.Reconcile(startupCtx, ledger)
	cancelStartup()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	voteService := services.NewVoteService(students, ledger, syncService, log.Named("vote"))
	resultsService := services.NewResultsService(ledger)
	authService := services.NewAdminAuthService(cfg.AdminPassword, cfg.JWTSecret)
	if !authService.Enabled() {
		log.Warn("ADMIN_PASSWORD not set, results and live views are public")
	}

	handler := http.NewHandler(http.Handlers{
		Vote:    http.NewVoteHandler(voteService),
		Results: http.NewResultsHandler(resultsService),
		Live:    http.NewLiveHandler(hub, cfg.CORSOrigins, log.Named("live")),
		Auth:    http.NewAuthHandler(authService, stdhttp.SameSiteLaxMode),
		Health:  http.NewHealthHandler(students.Len(), ledger, syncService),
	}, cfg.CORSOrigins, log.Named("http"))

	server := &stdhttp.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("mirror", syncService.Backend()),
			zap.Strings("options", ledger.Options()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
	}
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopHub()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := syncService.Wait(shutdownCtx); err != nil {
		log.Warn("mirror appends still in flight at exit", zap.Error(err))
	}
	return nil
}
