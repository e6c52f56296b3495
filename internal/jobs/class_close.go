// Package jobs runs the service's periodic maintenance tasks.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/config"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

// StartClassCloseJob periodically deactivates classes whose end date has
// passed. Runs until ctx is cancelled.
func StartClassCloseJob(ctx context.Context, cfg config.Config, store *repository.Store, logger *zap.Logger) {
	if !cfg.ClassCloseJobEnabled {
		return
	}
	interval := cfg.ClassCloseJobInterval
	if interval <= 0 {
		interval = time.Hour
	}
	timeout := cfg.ClassCloseJobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				closed, err := store.CloseExpiredClasses(tickCtx, time.Now().UTC())
				cancel()
				if err != nil {
					logger.Warn("class close job failed", zap.Error(err))
					continue
				}
				if closed > 0 {
					logger.Info("closed expired classes", zap.Int64("count", closed))
				}
			}
		}
	}()
}
