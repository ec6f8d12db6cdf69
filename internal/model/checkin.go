package model

import "time"

// CheckinStatus 打卡实例状态枚举
type CheckinStatus string

const (
	CheckinStatusPending   CheckinStatus = "pending"               // 已创建并发送初次提醒，等待响应
	CheckinStatusSnoozed   CheckinStatus = "snoozed"               // 用户延后或提醒循环进行中
	CheckinStatusEscalated CheckinStatus = "escalated_no_response" // 终态：snooze 预算耗尽
	CheckinStatusCompleted CheckinStatus = "completed"             // 终态：用户已响应
)

// SafetyCheckin 一条 timing 在某个日历日上的打卡实例
// (timing_id, checkin_date) 上的唯一索引是防重复创建的最终保障：
// 两个重叠的 evaluator 运行可能同时通过存在性检查，冲突必须在存储层吸收
type SafetyCheckin struct {
	BaseModel
	PublicID      int64         `gorm:"uniqueIndex;not null" json:"public_id"`
	TimingID      int64         `gorm:"not null;uniqueIndex:uniq_safety_checkins_timing_date" json:"timing_id"`
	UserID        int64         `gorm:"not null;index:idx_safety_checkins_user" json:"user_id"`
	OrgID         int64         `gorm:"not null" json:"org_id"`
	CheckinDate   time.Time     `gorm:"type:date;not null;uniqueIndex:uniq_safety_checkins_timing_date" json:"checkin_date"`
	ScheduledTime string        `gorm:"type:time;not null" json:"scheduled_time"`
	Status        CheckinStatus `gorm:"type:varchar(24);not null;default:'pending';index:idx_safety_checkins_status" json:"status"`
	SnoozeCount   int           `gorm:"type:smallint;not null;default:0" json:"snooze_count"`
	LastSnoozeAt  *time.Time    `gorm:"type:timestamptz;index:idx_safety_checkins_status" json:"last_snooze_at,omitempty"`
	RespondedAt   *time.Time    `gorm:"type:timestamptz" json:"responded_at,omitempty"`
}

// TableName 指定表名
func (SafetyCheckin) TableName() string {
	return "safety_checkins"
}
