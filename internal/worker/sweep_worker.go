package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper removes listings whose date has passed.
type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// SweepWorker runs the expired-listing sweep on a fixed interval.
type SweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweepWorker constructs the worker. A non-positive interval disables it.
func NewSweepWorker(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *SweepWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepWorker{sweeper: sweeper, interval: interval, logger: logger, now: time.Now}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (w *SweepWorker) Run(ctx context.Context) {
	if w.sweeper == nil || w.interval <= 0 {
		w.logger.Info("expired event sweep disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	removed, err := w.sweeper.SweepExpired(ctx, w.now())
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("expired event sweep failed", zap.Error(err))
		}
		return
	}
	w.logger.Debug("expired event sweep finished", zap.Int64("removed", removed))
}
