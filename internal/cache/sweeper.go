package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartSweeper sweeps expired entries from the given caches once
// immediately and then on every tick of interval, until ctx is cancelled.
func StartSweeper(ctx context.Context, interval time.Duration, log *zap.Logger, caches ...*Cache) {
	sweep := func() {
		for _, c := range caches {
			removed, err := c.SweepExpired()
			if err != nil {
				log.Error("cache sweep failed", zap.String("table", string(c.table)), zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Info("swept expired cache entries",
					zap.String("table", string(c.table)),
					zap.Int("removed", removed),
				)
			}
		}
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		sweep()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()
}
