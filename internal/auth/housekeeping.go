// AngelaMos | 2026
// housekeeping.go

package auth

import (
	"context"
	"log/slog"
	"time"
)

// purgeGrace keeps expired sessions around for a day so a late refresh still
// reads as expired rather than unknown.
const purgeGrace = 24 * time.Hour

// RunHousekeeping purges long-expired sessions every interval until ctx is
// cancelled.
func RunHousekeeping(
	ctx context.Context,
	repo Repository,
	interval time.Duration,
	logger *slog.Logger,
) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.Purge(ctx, time.Now().Add(-purgeGrace))
			if err != nil {
				logger.Warn("session purge failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions purged", "count", removed)
			}
		}
	}
}
