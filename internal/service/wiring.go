package service

import (
	"sync"

	"KnocksterSafety/internal/push"
	"KnocksterSafety/internal/repository"
	"KnocksterSafety/pkg/fcm"
	"KnocksterSafety/pkg/logger"
	"KnocksterSafety/storage/database"
)

var (
	checkinOnce sync.Once
	checkinInst *CheckinService

	dispatcherOnce sync.Once
	dispatcherInst *Dispatcher
)

// Checkins 打卡状态迁移服务单例
func Checkins() *CheckinService {
	checkinOnce.Do(func() {
		checkinInst = NewCheckinService(
			logger.Logger,
			repository.NewCheckinRepository(database.DB()),
		)
	})
	return checkinInst
}

// Dispatch 通知调度单例
// fcm 未初始化时网关降级为纯失败投递，审计日志照常落库
func Dispatch() *Dispatcher {
	dispatcherOnce.Do(func() {
		var sender push.Sender
		if client := fcm.GetClient(); client != nil {
			sender = client
		}

		gateway := push.NewGateway(
			logger.Logger,
			repository.NewUserRepository(database.DB()),
			sender,
		)

		dispatcherInst = NewDispatcher(
			logger.Logger,
			gateway,
			repository.NewNotificationLogRepository(database.DB()),
		)
	})
	return dispatcherInst
}
