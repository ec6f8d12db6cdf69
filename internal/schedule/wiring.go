package schedule

import (
	"sync"

	"KnocksterSafety/config"
	"KnocksterSafety/internal/cache"
	"KnocksterSafety/internal/queue"
	"KnocksterSafety/internal/repository"
	"KnocksterSafety/internal/service"
	"KnocksterSafety/pkg/logger"
	"KnocksterSafety/storage/database"
)

var (
	evaluatorOnce sync.Once
	evaluatorInst *TimingEvaluator

	monitorOnce sync.Once
	monitorInst *SnoozeMonitor
)

// GetTimingEvaluator 配置评估任务单例
func GetTimingEvaluator() *TimingEvaluator {
	evaluatorOnce.Do(func() {
		evaluatorInst = NewTimingEvaluator(
			logger.Logger,
			repository.NewTimingRepository(database.DB()),
			repository.NewCheckinRepository(database.DB()),
			service.Dispatch(),
			queue.NewProducer(),
			cache.RunLocker{},
			config.Cfg.Location(),
			config.Cfg.JobRunTimeout,
		)
	})
	return evaluatorInst
}

// GetSnoozeMonitor snooze 巡检任务单例
func GetSnoozeMonitor() *SnoozeMonitor {
	monitorOnce.Do(func() {
		monitorInst = NewSnoozeMonitor(
			logger.Logger,
			repository.NewCheckinRepository(database.DB()),
			repository.NewSnoozeLogRepository(database.DB()),
			repository.NewUserRepository(database.DB()),
			service.Dispatch(),
			queue.NewProducer(),
			cache.RunLocker{},
			config.Cfg.SnoozeInterval,
			config.Cfg.EscalationThreshold,
			config.Cfg.JobRunTimeout,
		)
	})
	return monitorInst
}
