package model

// MQ 消息契约
// 事件消息由本服务发布给下游（审计、看板），动作消息由 App 后端发布给 worker

// CheckinEventMessage 打卡生命周期事件
type CheckinEventMessage struct {
	MessageID   string `json:"message_id"`
	Event       string `json:"event"` // created, reminder_sent, escalated
	CheckinID   int64  `json:"checkin_id"`
	TimingID    int64  `json:"timing_id,omitempty"`
	UserID      int64  `json:"user_id"`
	OrgID       int64  `json:"org_id"`
	CheckinDate string `json:"checkin_date"`
	SnoozeCount int    `json:"snooze_count,omitempty"`
	AlertID     int64  `json:"alert_id,omitempty"`
	OccurredAt  string `json:"occurred_at"` // RFC3339
}

// 事件名
const (
	CheckinEventCreated      = "created"
	CheckinEventReminderSent = "reminder_sent"
	CheckinEventEscalated    = "escalated"
)

// CheckinActionMessage 外部触发的状态迁移动作
type CheckinActionMessage struct {
	MessageID string `json:"message_id"`
	Action    string `json:"action"` // snooze, respond
	CheckinID int64  `json:"checkin_id"`
	ActedAt   string `json:"acted_at"` // RFC3339
}

// 动作名
const (
	CheckinActionSnooze  = "snooze"
	CheckinActionRespond = "respond"
)
