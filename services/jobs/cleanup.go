package jobs

import (
	"context"
	"pos_backoffice_go/services"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ShownToastRetention is how long a displayed toast is kept before it is deleted
const ShownToastRetention = 24 * time.Hour

// Sweeper drops stale in-memory state, such as idle rate limit keys
type Sweeper interface {
	Cleanup() int
}

// RunCleanup deletes shown toasts past retention and sweeps the given in-memory stores
func RunCleanup(ctx context.Context, notifier *services.Notifier, sweepers ...Sweeper) {
	removed, err := notifier.CleanupShown(ctx, ShownToastRetention)
	if err != nil {
		logrus.WithError(err).Error("[CRON] failed to clean up shown notifications")
	} else {
		logrus.WithField("removed", removed).Debug("[CRON] shown notifications cleaned up")
	}

	for _, s := range sweepers {
		if n := s.Cleanup(); n > 0 {
			logrus.WithField("removed", n).Debug("[CRON] idle keys swept")
		}
	}
}

// StartScheduler runs the cleanup every hour. Stop the returned scheduler on shutdown.
func StartScheduler(ctx context.Context, notifier *services.Notifier, sweepers ...Sweeper) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("@hourly", func() {
		RunCleanup(ctx, notifier, sweepers...)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logrus.Info("[CRON] scheduler started")
	return c, nil
}
