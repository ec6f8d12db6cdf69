package model

import "time"

// SafetySnoozeLog 单次提醒尝试的追加日志，写入后不再修改
type SafetySnoozeLog struct {
	BaseModel
	CheckinID             int64     `gorm:"not null;index:idx_safety_snooze_logs_checkin" json:"checkin_id"`
	SnoozeNumber          int       `gorm:"type:smallint;not null" json:"snooze_number"` // 1-based
	SentAt                time.Time `gorm:"type:timestamptz;not null;default:now()" json:"sent_at"`
	NotificationDelivered bool      `gorm:"not null;default:false" json:"notification_delivered"`
}

// TableName 指定表名
func (SafetySnoozeLog) TableName() string {
	return "safety_snooze_logs"
}
