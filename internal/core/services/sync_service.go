package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
	"github.com/vncsmyrnk/covervote/internal/logger"
	"github.com/vncsmyrnk/covervote/internal/metrics"
	"github.com/vncsmyrnk/covervote/internal/resilience"
)

// SyncService copies committed votes to the mirror without ever failing the cast.
type SyncService struct {
	mirror  ports.VoteMirror
	breaker *resilience.Breaker
	timeout time.Duration
	logger  *zap.Logger

	wg sync.WaitGroup
}

func NewSyncService(mirror ports.VoteMirror, timeout time.Duration, breakerCfg resilience.BreakerConfig, l *zap.Logger) *SyncService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SyncService{
		mirror:  mirror,
		breaker: resilience.NewBreaker(breakerCfg),
		timeout: timeout,
		logger:  logger.Resolve(l).With(zap.String("mirror", mirror.Name())),
	}
}

func (s *SyncService) Backend() string {
	return s.mirror.Name()
}

func (s *SyncService) BreakerState() resilience.State {
	return s.breaker.State()
}

// AppendAsync hands vote to the mirror in the background.
func (s *SyncService) AppendAsync(vote domain.Vote) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.Append(context.Background(), vote)
	}()
}

// Append writes vote to the mirror under the configured timeout. Failures are logged
// and returned wrapped in domain.ErrMirrorUnavailable; callers may ignore them.
func (s *SyncService) Append(ctx context.Context, vote domain.Vote) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.breaker.Do(func() error {
		return s.mirror.Append(ctx, vote)
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordAppend(s.mirror.Name(), metrics.ResultOK, elapsed.Seconds())
		s.logger.Debug("vote mirrored", zap.String("student_id", vote.StudentID), zap.Duration("took", elapsed))
		return nil
	case errors.Is(err, resilience.ErrBreakerOpen):
		metrics.RecordAppend(s.mirror.Name(), metrics.ResultSkipped, 0)
		s.logger.Warn("mirror append skipped, breaker open", zap.String("student_id", vote.StudentID))
	default:
		metrics.RecordAppend(s.mirror.Name(), metrics.ResultFailed, elapsed.Seconds())
		s.logger.Error("mirror append failed",
			zap.String("student_id", vote.StudentID),
			zap.Duration("took", elapsed),
			zap.Error(err),
		)
	}
	return fmt.Errorf("%w: %w", domain.ErrMirrorUnavailable, err)
}

// Reconcile hydrates ledger from the mirror. Any error leaves the ledger untouched.
func (s *SyncService) Reconcile(ctx context.Context, ledger *Ledger) (int, error) {
	s.logger.Info("loading existing votes from mirror")

	votes, err := s.mirror.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("could not load existing votes, starting with empty ledger", zap.Error(err))
		return 0, fmt.Errorf("%w: %w", domain.ErrMirrorUnavailable, err)
	}

	loaded, skipped := ledger.Hydrate(votes)
	metrics.LedgerSize.Set(float64(ledger.Len()))
	s.logger.Info("existing votes loaded",
		zap.Int("loaded", loaded),
		zap.Int("skipped", skipped),
	)
	return loaded, nil
}

// Wait blocks until in-flight appends finish or ctx is done.
func (s *SyncService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
