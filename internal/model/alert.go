package model

import "time"

// AlertType 告警类型枚举
type AlertType string

const (
	AlertTypeNoResponseAfterSnooze AlertType = "no_response_after_snooze"
)

// AlertPriority 告警优先级枚举
type AlertPriority string

const (
	AlertPriorityHigh AlertPriority = "high"
)

// AlertStatus 告警处理状态枚举
type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "pending"      // 待管理员处理
	AlertStatusAcknowledged AlertStatus = "acknowledged" // 管理员已确认
)

// SafetyAlert 管理员侧升级告警
// 每个升级实例恰好一条，由打卡状态的单向迁移 + 同事务插入保证
type SafetyAlert struct {
	BaseModel
	PublicID    int64         `gorm:"uniqueIndex;not null" json:"public_id"`
	CheckinID   int64         `gorm:"not null;uniqueIndex" json:"checkin_id"`
	UserID      int64         `gorm:"not null;index:idx_safety_alerts_user" json:"user_id"`
	OrgID       int64         `gorm:"not null;index:idx_safety_alerts_org" json:"org_id"`
	AlertType   AlertType     `gorm:"type:varchar(32);not null" json:"alert_type"`
	Priority    AlertPriority `gorm:"type:varchar(16);not null;default:'high'" json:"priority"`
	AlertStatus AlertStatus   `gorm:"type:varchar(16);not null;default:'pending'" json:"alert_status"`
	AlertSentAt time.Time     `gorm:"type:timestamptz;not null;default:now()" json:"alert_sent_at"`
}

// TableName 指定表名
func (SafetyAlert) TableName() string {
	return "safety_alerts"
}
