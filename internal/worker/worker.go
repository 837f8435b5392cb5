// Package worker runs the background loops: the outbox relay and the
// appointment reminders.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Runner interface {
	Run(ctx context.Context) error
}

// Start calls r.Run every interval until ctx is cancelled.
func Start(ctx context.Context, name string, interval time.Duration, r Runner, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("worker started", zap.String("worker", name), zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped", zap.String("worker", name))
			return
		case <-ticker.C:
			if err := r.Run(ctx); err != nil {
				logger.Error("worker run failed", zap.String("worker", name), zap.Error(err))
			}
		}
	}
}
