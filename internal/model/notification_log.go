package model

import "time"

// NotificationType 通知类别枚举
type NotificationType string

const (
	NotificationTypeInitialCheckin NotificationType = "initial_checkin" // 创建实例后的首次提醒
	NotificationTypeSnoozeReminder NotificationType = "snooze_reminder" // snooze 循环中的追加提醒
	NotificationTypeAdminAlert     NotificationType = "admin_alert"     // 升级后的管理员主题通知
)

// DeliveryStatus 投递结果枚举
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// NotificationLog 投递审计日志，每次投递尝试恰好一条
type NotificationLog struct {
	BaseModel
	CheckinID        int64            `gorm:"not null;index:idx_notification_logs_checkin" json:"checkin_id"`
	UserID           int64            `gorm:"not null" json:"user_id"`
	NotificationType NotificationType `gorm:"type:varchar(32);not null" json:"notification_type"`
	DeliveryStatus   DeliveryStatus   `gorm:"type:varchar(16);not null" json:"delivery_status"`
	ErrorMessage     *string          `gorm:"type:varchar(255)" json:"error_message,omitempty"`
	SentAt           time.Time        `gorm:"type:timestamptz;not null;default:now()" json:"sent_at"`
}

// TableName 指定表名
func (NotificationLog) TableName() string {
	return "notification_logs"
}
