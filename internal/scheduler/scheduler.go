package scheduler

import (
	"context"
	"log/slog"
	"time"

	"devlog_notifier/internal/domain"
)

// Syncer defines the interface for one full sync pass.
type Syncer interface {
	Sync(ctx context.Context) (*domain.PassStats, error)
}

type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

// Start runs a pass immediately, then on every tick. Passes run on this
// goroutine, so they never overlap; a tick that fires while a pass is still
// running is dropped rather than queued, which keeps delivery at-most-once
// even when a pass overruns the interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
			select {
			case <-ticker.C:
				s.logger.Warn("pass overran interval, skipping a tick")
			default:
			}
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context) {
	if _, err := s.syncer.Sync(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("sync pass failed", "error", err)
	}
}
