package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shopinventory/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// InitScheduler registers background jobs and returns the started scheduler.
// Expired session rows are swept hourly; the session cookie itself is bounded
// by the same TTL so a missed sweep only delays storage reclamation.
func (a *Application) InitScheduler() *cron.Cron {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	sched := cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err := sched.AddFunc("@hourly", func() {
		result := a.gormDB.
			Where("expires_at < ?", time.Now()).
			Delete(&domain.SysSession{})
		if result.Error != nil {
			zap.L().Error("session cleanup failed", zap.Error(result.Error))
			return
		}
		if result.RowsAffected > 0 {
			zap.L().Info("cleaned up expired sessions", zap.Int64("count", result.RowsAffected))
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	sched.Start()
	return sched
}
