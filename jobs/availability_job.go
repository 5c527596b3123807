package jobs

import (
	"context"
	"time"

	config "github.com/anjiri1684/tutor_scheduler/configs"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PurgePastAvailability deletes windows whose day is more than
// retentionDays before now. Lessons never reference windows, so history is
// unaffected.
func PurgePastAvailability(ctx context.Context, db *gorm.DB, retentionDays int, now time.Time) (int64, error) {
	if retentionDays < 0 {
		retentionDays = 0
	}
	cutoff := terms.Midnight(now).AddDate(0, 0, -retentionDays)

	res := db.WithContext(ctx).Where("day < ?", cutoff).Delete(&models.AvailabilityWindow{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "purge availability windows")
	}
	return res.RowsAffected, nil
}

// Register schedules the purge on c using the configured cron spec.
func Register(c *cron.Cron, db *gorm.DB, cfg config.Config) error {
	_, err := c.AddFunc(cfg.PurgeSchedule, func() {
		logrus.Info("Running job: PurgePastAvailability...")
		removed, err := PurgePastAvailability(context.Background(), db, cfg.AvailabilityRetentionDays, time.Now())
		if err != nil {
			logrus.WithError(err).Error("🔥 availability purge failed")
			return
		}
		logrus.WithField("removed", removed).Info("Availability purge finished")
	})
	return errors.Wrapf(err, "schedule availability purge %q", cfg.PurgeSchedule)
}
