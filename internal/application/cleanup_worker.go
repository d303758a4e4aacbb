package application

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/logger"
)

// Sweeper removes stale notification associations
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// CleanupPeriod is how often RunCleanup sweeps for a given cleanup interval.
//
// A sweep removes records older than the TTL, so a record lives at most TTL plus one period.
// With the TTL at half the interval, as configured by default, that is one cleanup interval.
func CleanupPeriod(interval time.Duration) time.Duration {
	if period := interval / 2; period > 0 {
		return period
	}
	return interval
}

// RunCleanup sweeps every CleanupPeriod(interval) until ctx is done. A failed sweep is logged and retried on the next tick.
func RunCleanup(ctx context.Context, sweeper Sweeper, interval time.Duration, log *slog.Logger) {
	log = log.With(slog.String("component", "cleanup_worker"))
	if interval <= 0 {
		log.Warn("Cleanup disabled, interval is not positive", slog.Duration("interval", interval))
		return
	}

	period := CleanupPeriod(interval)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info("Cleanup worker started", slog.Duration("interval", interval), slog.Duration("period", period))
	for {
		select {
		case <-ctx.Done():
			log.Info("Cleanup worker stopped")
			return
		case <-ticker.C:
			if _, err := sweeper.Sweep(ctx); err != nil {
				log.Error("Notification sweep failed", logger.Err(err))
			}
		}
	}
}
