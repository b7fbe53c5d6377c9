// Package mirror picks the durable vote mirror named by the configuration.
package mirror

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/adapters/mirror/noop"
	"github.com/vncsmyrnk/covervote/internal/adapters/mirror/sheets"
	"github.com/vncsmyrnk/covervote/internal/adapters/repository/sqlmirror"
	"github.com/vncsmyrnk/covervote/internal/config"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
	"github.com/vncsmyrnk/covervote/internal/logger"
)

// Open returns the configured mirror and a func releasing its resources.
func Open(ctx context.Context, cfg config.Config, l *zap.Logger) (ports.VoteMirror, func() error, error) {
	l = logger.Resolve(l)
	nop := func() error { return nil }

	if cfg.MirrorBackend == config.MirrorAuto {
		return openAuto(ctx, cfg, l), nop, nil
	}

	switch cfg.MirrorBackend {
	case config.MirrorSheets:
		if _, err := os.Stat(cfg.ServiceAccountFile); err != nil {
			return nil, nil, fmt.Errorf("service account key file: %w", err)
		}
		m, err := sheets.New(ctx, cfg.SheetsID, cfg.ServiceAccountFile, cfg.SheetsRange)
		if err != nil {
			return nil, nil, err
		}
		return m, nop, nil
	case config.MirrorPostgres:
		m, db, err := sqlmirror.Open(ctx, sqlmirror.Postgres, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return m, db.Close, nil
	case config.MirrorSQLite:
		m, db, err := sqlmirror.Open(ctx, sqlmirror.SQLite, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return m, db.Close, nil
	case config.MirrorNone:
		return noop.New(), nop, nil
	default:
		return nil, nil, fmt.Errorf("unknown mirror backend %q", cfg.MirrorBackend)
	}
}

// openAuto uses the spreadsheet when it is usable and falls back to memory-only
// voting otherwise. Voting must stay available without the mirror.
func openAuto(ctx context.Context, cfg config.Config, l *zap.Logger) ports.VoteMirror {
	if !cfg.SheetsConfigured() {
		l.Warn("spreadsheet credentials not configured, votes are kept in memory only")
		return noop.New()
	}
	if _, err := os.Stat(cfg.ServiceAccountFile); err != nil {
		l.Warn("service account key file not readable, votes are kept in memory only",
			zap.String("file", cfg.ServiceAccountFile),
			zap.Error(err),
		)
		return noop.New()
	}

	m, err := sheets.New(ctx, cfg.SheetsID, cfg.ServiceAccountFile, cfg.SheetsRange)
	if err != nil {
		l.Warn("spreadsheet mirror unavailable, votes are kept in memory only", zap.Error(err))
		return noop.New()
	}
	return m
}
