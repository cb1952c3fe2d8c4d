// Package agent contains the timer-driven pollers that move events and
// suggestions through the pipeline. Each agent is a single-instance loop:
// the database's row-level status columns are the only coordination.
package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/metrics"
)

// runLoop drives one agent: an immediate first cycle, then a fixed interval.
// A cycle that errors is logged and the loop waits the error backoff before
// rejoining the ticker, so a broken collaborator never turns into a hot loop.
func runLoop(ctx context.Context, name string, interval, backoff time.Duration, logger *zap.Logger, cycle func(context.Context) error) error {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	if backoff <= 0 {
		backoff = time.Minute
	}

	logger.Info("agent starting",
		zap.String("agent", name),
		zap.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runCycle(ctx, name, backoff, logger, cycle)

	for {
		select {
		case <-ctx.Done():
			logger.Info("agent shutting down", zap.String("agent", name))
			return ctx.Err()
		case <-ticker.C:
			runCycle(ctx, name, backoff, logger, cycle)
		}
	}
}

func runCycle(ctx context.Context, name string, backoff time.Duration, logger *zap.Logger, cycle func(context.Context) error) {
	start := time.Now()
	err := cycle(ctx)
	metrics.CycleDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err == nil || ctx.Err() != nil {
		return
	}

	logger.Error("agent cycle failed, backing off",
		zap.String("agent", name),
		zap.Duration("backoff", backoff),
		zap.Error(err),
	)
	select {
	case <-ctx.Done():
	case <-time.After(backoff):
	}
}
