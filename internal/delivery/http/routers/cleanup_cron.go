package routers

import (
	"log/slog"
	"time"

	"posture-analyzer/internal/usecases"

	"github.com/robfig/cron/v3"
)

// StartCleanupCron runs the orphan sweep on schedule, a six-field cron spec
// with seconds. The caller stops the returned cron on shutdown.
func StartCleanupCron(cleanupUC usecases.CleanupService, schedule string, maxAge time.Duration, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(schedule, func() {
		removed, err := cleanupUC.CleanupOldTempFiles(maxAge)
		if err != nil {
			logger.Error("error cleaning up old temp files", "err", err)
		}
		if removed > 0 {
			logger.Info("old temp files removed", "count", removed)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start() // cron job'u başlatır
	return c, nil
}
