package cleanup

import (
	"context"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/common/clock"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
	"github.com/AlibekovAA/chat-accounts/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RunOnce deletes every revocation record whose token has expired.
func RunOnce(ctx context.Context, repo ExpiredDeleter, c clock.Clock, log *logger.Logger) (int64, error) {
	deleted, err := repo.DeleteExpired(ctx, c.Now())
	if err != nil {
		log.Errorf("revoked token cleanup failed: %v", err)
		return 0, err
	}
	if deleted > 0 {
		metrics.RevokedTokensCleanupDeleted.Add(float64(deleted))
		log.Infof("revoked token cleanup: deleted %d expired tokens", deleted)
	}
	return deleted, nil
}

// StartRevokedTokenCleanup blocks until ctx is done.
func StartRevokedTokenCleanup(ctx context.Context, repo ExpiredDeleter, c clock.Clock, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = RunOnce(ctx, repo, c, log)
		}
	}
}
