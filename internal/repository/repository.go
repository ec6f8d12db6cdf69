package repository

import (
	"context"
	"time"

	"KnocksterSafety/internal/model"
)

// 仓储接口：调度任务与服务层只依赖接口，便于注入测试替身
// 条件更新统一返回 (applied bool, err)：false 表示状态守卫未命中（已被并发迁移）

type TimingRepository interface {
	// ListFiringAt 查询在给定分钟（"HH:MM"）触发的所有激活 timing
	ListFiringAt(ctx context.Context, clockMinute string) ([]*model.SafetyTiming, error)
}

type CheckinRepository interface {
	// CreateIfAbsent 创建打卡实例；(timing_id, checkin_date) 冲突时静默跳过并返回 false
	CreateIfAbsent(ctx context.Context, checkin *model.SafetyCheckin) (bool, error)
	// ListSnoozedBefore 查询 snoozed 且 last_snooze_at 早于 cutoff 的实例
	ListSnoozedBefore(ctx context.Context, cutoff time.Time) ([]*model.SafetyCheckin, error)
	// Escalate 单事务内完成 snoozed -> escalated_no_response 的状态 CAS 与告警插入
	Escalate(ctx context.Context, checkinID int64, alert *model.SafetyAlert) (bool, error)
	// AdvanceSnooze 在状态与计数都未变的前提下递增 snooze_count 并刷新 last_snooze_at
	AdvanceSnooze(ctx context.Context, checkinID int64, fromCount int, at time.Time) (bool, error)
	// Snooze pending|snoozed -> snoozed，刷新 last_snooze_at
	Snooze(ctx context.Context, publicID int64, at time.Time) (bool, error)
	// Respond pending|snoozed -> completed，记录 responded_at
	Respond(ctx context.Context, publicID int64, at time.Time) (bool, error)
	FindByPublicID(ctx context.Context, publicID int64) (*model.SafetyCheckin, error)
}

type SnoozeLogRepository interface {
	Append(ctx context.Context, log *model.SafetySnoozeLog) error
}

type NotificationLogRepository interface {
	Append(ctx context.Context, log *model.NotificationLog) error
}

type UserRepository interface {
	// ActiveDeviceTokens 查询用户全部激活设备 token
	ActiveDeviceTokens(ctx context.Context, userID int64) ([]string, error)
	// DisplayName 解析用户展示名，档案缺失时回退占位文案
	DisplayName(ctx context.Context, userID int64) (string, error)
}
