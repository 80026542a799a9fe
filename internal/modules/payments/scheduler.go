package payments

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler periodically re-drives distribution for payments that are
// completed but not yet transferred: the crash-recovery path when the
// process died (or the bank call failed) between settlement and transfer.
// Safe to run alongside live notification handling; the transferred flag
// is the only synchronization needed.
type Scheduler struct {
	engine   *Engine
	ledger   Ledger
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

func NewScheduler(engine *Engine, ledger Ledger, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:   engine,
		ledger:   ledger,
		interval: interval,
		batch:    100,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.logger.Info("distribution scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("distribution scheduler stopped")
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep processes one batch of undistributed payments. Errors on a single
// payment are logged and do not stop the batch.
func (s *Scheduler) Sweep(ctx context.Context) {
	pending, err := s.ledger.ListUndistributed(ctx, s.batch)
	if err != nil {
		s.logger.ErrorContext(ctx, "distribution sweep query failed", "err", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	s.logger.InfoContext(ctx, "distribution sweep", "pending", len(pending))
	for _, p := range pending {
		if err := s.engine.Distribute(ctx, p); err != nil {
			s.logger.ErrorContext(ctx, "distribution retry failed",
				"payment_id", p.ID, "err", err)
		}
	}
}
