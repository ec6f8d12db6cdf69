package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/internal/push"
	"KnocksterSafety/internal/repository"
	"KnocksterSafety/pkg/metrics"
)

// Notifier 投递通道抽象，生产实现是 push.Gateway
type Notifier interface {
	SendToUser(ctx context.Context, userID int64, title, body string, data map[string]string) push.Outcome
	SendToOrgAdmins(ctx context.Context, orgID int64, title, body string, data map[string]string) push.Outcome
}

// Dispatcher 打卡通知调度：拼装文案、投递、落一条审计日志
// 投递失败只体现在 Outcome 和日志里，永远不会作为 error 打断批处理
type Dispatcher struct {
	logger  *zap.Logger
	gateway Notifier
	logs    repository.NotificationLogRepository
}

func NewDispatcher(logger *zap.Logger, gateway Notifier, logs repository.NotificationLogRepository) *Dispatcher {
	return &Dispatcher{
		logger:  logger,
		gateway: gateway,
		logs:    logs,
	}
}

// SendInitialCheckin 实例创建后的首次提醒
func (d *Dispatcher) SendInitialCheckin(ctx context.Context, checkin *model.SafetyCheckin, label string) push.Outcome {
	title := "Safety Check-in Required"
	body := fmt.Sprintf("Time for your %s check-in", label)

	outcome := d.gateway.SendToUser(ctx, checkin.UserID, title, body, map[string]string{
		"type":           "checkin_alert",
		"checkin_id":     strconv.FormatInt(checkin.PublicID, 10),
		"label":          label,
		"scheduled_time": checkin.ScheduledTime,
	})

	d.record(ctx, checkin, model.NotificationTypeInitialCheckin, outcome)
	return outcome
}

// SendSnoozeReminder snooze 循环中的追加提醒
func (d *Dispatcher) SendSnoozeReminder(ctx context.Context, checkin *model.SafetyCheckin, remaining int) push.Outcome {
	title := "Check-in Reminder"
	body := fmt.Sprintf("Please complete your safety check-in (%d snoozes remaining)", remaining)

	outcome := d.gateway.SendToUser(ctx, checkin.UserID, title, body, map[string]string{
		"type":       "checkin_alert",
		"checkin_id": strconv.FormatInt(checkin.PublicID, 10),
	})

	d.record(ctx, checkin, model.NotificationTypeSnoozeReminder, outcome)
	return outcome
}

// SendNoResponseAlert 升级后的管理员主题通知
func (d *Dispatcher) SendNoResponseAlert(ctx context.Context, checkin *model.SafetyCheckin, userName string, alertPublicID int64) push.Outcome {
	title := "No Response Alert"
	body := fmt.Sprintf("%s has not responded after %d snoozes", userName, checkin.SnoozeCount)

	outcome := d.gateway.SendToOrgAdmins(ctx, checkin.OrgID, title, body, map[string]string{
		"type":       "admin_alert",
		"alert_id":   strconv.FormatInt(alertPublicID, 10),
		"alert_type": string(model.AlertTypeNoResponseAfterSnooze),
		"priority":   string(model.AlertPriorityHigh),
	})

	d.record(ctx, checkin, model.NotificationTypeAdminAlert, outcome)
	return outcome
}

// record 每次投递尝试恰好写一条审计日志，写失败只告警不中断
func (d *Dispatcher) record(ctx context.Context, checkin *model.SafetyCheckin, kind model.NotificationType, outcome push.Outcome) {
	entry := &model.NotificationLog{
		CheckinID:        checkin.ID,
		UserID:           checkin.UserID,
		NotificationType: kind,
		SentAt:           time.Now(),
	}

	if outcome.Delivered {
		entry.DeliveryStatus = model.DeliveryStatusSent
	} else {
		entry.DeliveryStatus = model.DeliveryStatusFailed
		if outcome.ErrorMessage != "" {
			msg := outcome.ErrorMessage
			if len(msg) > 255 {
				msg = msg[:255]
			}
			entry.ErrorMessage = &msg
		}
		metrics.GetMetrics().RecordPushFailure(ctx, string(kind))
	}

	if err := d.logs.Append(ctx, entry); err != nil {
		d.logger.Error("Failed to append notification log",
			zap.Int64("checkin_id", checkin.ID),
			zap.String("notification_type", string(kind)),
			zap.Error(err),
		)
	}
}
