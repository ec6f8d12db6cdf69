package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/internal/push"
	"KnocksterSafety/internal/repository"
	"KnocksterSafety/pkg/errors"
	"KnocksterSafety/pkg/metrics"
	"KnocksterSafety/pkg/snowflake"
	"KnocksterSafety/utils"
)

// ReminderNotifier 追加提醒与升级告警投递
type ReminderNotifier interface {
	SendSnoozeReminder(ctx context.Context, checkin *model.SafetyCheckin, remaining int) push.Outcome
	SendNoResponseAlert(ctx context.Context, checkin *model.SafetyCheckin, userName string, alertPublicID int64) push.Outcome
}

const snoozeMonitorLockKey = "snooze_monitor"

// SnoozeMonitor 每分钟扫描超时未响应的 snoozed 实例：
// 未到阈值的发追加提醒并推进 snooze_count，到阈值的升级为无响应告警
type SnoozeMonitor struct {
	logger     *zap.Logger
	checkins   repository.CheckinRepository
	snoozeLogs repository.SnoozeLogRepository
	users      repository.UserRepository
	dispatcher ReminderNotifier
	events     EventPublisher
	locker     Locker
	interval   time.Duration
	threshold  int
	lockTTL    time.Duration
	now        func() time.Time

	jobMutex   sync.Mutex
	jobRunning bool
}

func NewSnoozeMonitor(
	logger *zap.Logger,
	checkins repository.CheckinRepository,
	snoozeLogs repository.SnoozeLogRepository,
	users repository.UserRepository,
	dispatcher ReminderNotifier,
	events EventPublisher,
	locker Locker,
	interval time.Duration,
	threshold int,
	lockTTL time.Duration,
) *SnoozeMonitor {
	return &SnoozeMonitor{
		logger:     logger,
		checkins:   checkins,
		snoozeLogs: snoozeLogs,
		users:      users,
		dispatcher: dispatcher,
		events:     events,
		locker:     locker,
		interval:   interval,
		threshold:  threshold,
		lockTTL:    lockTTL,
		now:        time.Now,
	}
}

// Run 执行一轮 snooze 巡检，语义与 TimingEvaluator.Run 一致
func (m *SnoozeMonitor) Run(ctx context.Context) (*RunReport, error) {
	m.jobMutex.Lock()
	if m.jobRunning {
		m.jobMutex.Unlock()
		return nil, errors.JobAlreadyRunning
	}
	m.jobRunning = true
	m.jobMutex.Unlock()

	defer func() {
		m.jobMutex.Lock()
		m.jobRunning = false
		m.jobMutex.Unlock()
	}()

	if m.locker != nil {
		acquired, err := m.locker.TryLock(ctx, snoozeMonitorLockKey, m.lockTTL)
		if err != nil {
			m.logger.Warn("Run lock unavailable, proceeding without it", zap.Error(err))
		} else if !acquired {
			m.logger.Info("Snooze monitoring skipped, another run holds the lock")
			return nil, nil
		} else {
			defer func() {
				if err := m.locker.Unlock(context.WithoutCancel(ctx), snoozeMonitorLockKey); err != nil {
					m.logger.Warn("Failed to release run lock", zap.Error(err))
				}
			}()
		}
	}

	report := newRunReport("snooze_monitor")
	cutoff := m.now().Add(-m.interval)

	m.logger.Info("Snooze monitoring started",
		zap.String("run_id", report.RunID),
		zap.Time("cutoff", cutoff),
	)

	checkins, err := m.checkins.ListSnoozedBefore(ctx, cutoff)
	if err != nil {
		m.logger.Error("Failed to list overdue snoozed check-ins",
			zap.String("run_id", report.RunID),
			zap.Error(err),
		)
		return nil, err
	}

	for _, checkin := range checkins {
		outcome, itemErr := m.processCheckin(ctx, checkin)
		report.add(checkin.ID, outcome, itemErr)
		metrics.GetMetrics().RecordJobItem(ctx, report.Job, string(outcome))

		if itemErr != nil {
			m.logger.Error("Snooze monitoring item failed",
				zap.String("run_id", report.RunID),
				zap.Int64("checkin_id", checkin.ID),
				zap.Error(itemErr),
			)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	metrics.GetMetrics().RecordJobRun(ctx, report.Job, report.Duration.Seconds())

	m.logger.Info("Snooze monitoring finished",
		zap.String("run_id", report.RunID),
		zap.Int("total", len(report.Items)),
		zap.Any("summary", report.Summary()),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (m *SnoozeMonitor) processCheckin(ctx context.Context, checkin *model.SafetyCheckin) (ItemOutcome, error) {
	if checkin.SnoozeCount >= m.threshold {
		return m.escalate(ctx, checkin)
	}
	return m.remind(ctx, checkin)
}

// remind 先投递再推进计数。推进是以旧计数为前置的条件更新，
// 用户在投递窗口内响应会让推进落空，多发的那条提醒无害
func (m *SnoozeMonitor) remind(ctx context.Context, checkin *model.SafetyCheckin) (ItemOutcome, error) {
	remaining := m.threshold - checkin.SnoozeCount
	outcome := m.dispatcher.SendSnoozeReminder(ctx, checkin, remaining)

	now := m.now()
	err := m.snoozeLogs.Append(ctx, &model.SafetySnoozeLog{
		CheckinID:             checkin.ID,
		SnoozeNumber:          checkin.SnoozeCount + 1,
		SentAt:                now,
		NotificationDelivered: outcome.Delivered,
	})
	if err != nil {
		return OutcomeFailed, err
	}

	applied, err := m.checkins.AdvanceSnooze(ctx, checkin.ID, checkin.SnoozeCount, now)
	if err != nil {
		return OutcomeFailed, err
	}
	if !applied {
		return OutcomeSkippedRaced, nil
	}

	metrics.GetMetrics().RecordReminderSent(ctx, outcome.Delivered)

	if m.events != nil {
		_ = m.events.PublishCheckinEvent(ctx, model.CheckinEventMessage{
			Event:       model.CheckinEventReminderSent,
			CheckinID:   checkin.PublicID,
			UserID:      checkin.UserID,
			OrgID:       checkin.OrgID,
			CheckinDate: utils.DateString(checkin.CheckinDate),
			SnoozeCount: checkin.SnoozeCount + 1,
			OccurredAt:  now.Format(time.RFC3339),
		})
	}

	return OutcomeReminded, nil
}

// escalate 状态迁移和告警插入在同一事务里，迁移落空（已响应/已升级）则整体放弃
func (m *SnoozeMonitor) escalate(ctx context.Context, checkin *model.SafetyCheckin) (ItemOutcome, error) {
	alertPublicID, err := snowflake.NextID()
	if err != nil {
		return OutcomeFailed, err
	}

	now := m.now()
	alert := &model.SafetyAlert{
		PublicID:    alertPublicID,
		CheckinID:   checkin.ID,
		UserID:      checkin.UserID,
		OrgID:       checkin.OrgID,
		AlertType:   model.AlertTypeNoResponseAfterSnooze,
		Priority:    model.AlertPriorityHigh,
		AlertStatus: model.AlertStatusPending,
		AlertSentAt: now,
	}

	applied, err := m.checkins.Escalate(ctx, checkin.ID, alert)
	if err != nil {
		return OutcomeFailed, err
	}
	if !applied {
		return OutcomeSkippedRaced, nil
	}

	metrics.GetMetrics().RecordEscalation(ctx)

	userName, err := m.users.DisplayName(ctx, checkin.UserID)
	if err != nil {
		// 告警已落库，查不到姓名降级为占位名，不能让通知缺席
		m.logger.Warn("Failed to resolve user name for alert",
			zap.Int64("user_id", checkin.UserID),
			zap.Error(err),
		)
		userName = repository.UnknownUserName
	}

	m.dispatcher.SendNoResponseAlert(ctx, checkin, userName, alertPublicID)

	if m.events != nil {
		_ = m.events.PublishCheckinEvent(ctx, model.CheckinEventMessage{
			Event:       model.CheckinEventEscalated,
			CheckinID:   checkin.PublicID,
			UserID:      checkin.UserID,
			OrgID:       checkin.OrgID,
			CheckinDate: utils.DateString(checkin.CheckinDate),
			SnoozeCount: checkin.SnoozeCount,
			AlertID:     alertPublicID,
			OccurredAt:  now.Format(time.RFC3339),
		})
	}

	return OutcomeEscalated, nil
}
