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

// Locker 跨进程运行锁，生产实现基于 redis SetNX
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// EventPublisher 生命周期事件发布，best-effort
type EventPublisher interface {
	PublishCheckinEvent(ctx context.Context, msg model.CheckinEventMessage) error
}

// InitialNotifier 首次提醒投递
type InitialNotifier interface {
	SendInitialCheckin(ctx context.Context, checkin *model.SafetyCheckin, label string) push.Outcome
}

const timingEvaluatorLockKey = "timing_evaluator"

// TimingEvaluator 每分钟扫描到点的活跃打卡配置并创建当日实例
// 幂等性依赖 (timing_id, checkin_date) 唯一索引，重复触发只会 skip 不会重复创建
type TimingEvaluator struct {
	logger     *zap.Logger
	timings    repository.TimingRepository
	checkins   repository.CheckinRepository
	dispatcher InitialNotifier
	events     EventPublisher
	locker     Locker
	loc        *time.Location
	lockTTL    time.Duration
	now        func() time.Time

	jobMutex   sync.Mutex
	jobRunning bool
}

func NewTimingEvaluator(
	logger *zap.Logger,
	timings repository.TimingRepository,
	checkins repository.CheckinRepository,
	dispatcher InitialNotifier,
	events EventPublisher,
	locker Locker,
	loc *time.Location,
	lockTTL time.Duration,
) *TimingEvaluator {
	return &TimingEvaluator{
		logger:     logger,
		timings:    timings,
		checkins:   checkins,
		dispatcher: dispatcher,
		events:     events,
		locker:     locker,
		loc:        loc,
		lockTTL:    lockTTL,
		now:        time.Now,
	}
}

// Run 执行一轮评估。本进程内同任务重入返回 JobAlreadyRunning，
// 跨进程重叠（锁被占用）视为正常跳过，返回 (nil, nil)
func (e *TimingEvaluator) Run(ctx context.Context) (*RunReport, error) {
	e.jobMutex.Lock()
	if e.jobRunning {
		e.jobMutex.Unlock()
		return nil, errors.JobAlreadyRunning
	}
	e.jobRunning = true
	e.jobMutex.Unlock()

	defer func() {
		e.jobMutex.Lock()
		e.jobRunning = false
		e.jobMutex.Unlock()
	}()

	if e.locker != nil {
		acquired, err := e.locker.TryLock(ctx, timingEvaluatorLockKey, e.lockTTL)
		if err != nil {
			// 锁服务不可用时降级继续，唯一索引仍然保证不重复创建
			e.logger.Warn("Run lock unavailable, proceeding without it", zap.Error(err))
		} else if !acquired {
			e.logger.Info("Timing evaluation skipped, another run holds the lock")
			return nil, nil
		} else {
			defer func() {
				if err := e.locker.Unlock(context.WithoutCancel(ctx), timingEvaluatorLockKey); err != nil {
					e.logger.Warn("Failed to release run lock", zap.Error(err))
				}
			}()
		}
	}

	report := newRunReport("timing_evaluator")
	now := e.now().In(e.loc)
	minute := utils.ClockMinute(now)
	weekday := utils.WeekdayName(now)
	today := utils.DateOnly(now)

	e.logger.Info("Timing evaluation started",
		zap.String("run_id", report.RunID),
		zap.String("minute", minute),
		zap.String("weekday", weekday),
	)

	timings, err := e.timings.ListFiringAt(ctx, minute)
	if err != nil {
		e.logger.Error("Failed to list firing timings",
			zap.String("run_id", report.RunID),
			zap.Error(err),
		)
		return nil, err
	}

	for _, timing := range timings {
		outcome, itemErr := e.evaluateTiming(ctx, timing, today, weekday)
		report.add(timing.ID, outcome, itemErr)
		metrics.GetMetrics().RecordJobItem(ctx, report.Job, string(outcome))

		if itemErr != nil {
			e.logger.Error("Timing evaluation item failed",
				zap.String("run_id", report.RunID),
				zap.Int64("timing_id", timing.ID),
				zap.Error(itemErr),
			)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	metrics.GetMetrics().RecordJobRun(ctx, report.Job, report.Duration.Seconds())

	e.logger.Info("Timing evaluation finished",
		zap.String("run_id", report.RunID),
		zap.Int("total", len(report.Items)),
		zap.Any("summary", report.Summary()),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (e *TimingEvaluator) evaluateTiming(ctx context.Context, timing *model.SafetyTiming, today time.Time, weekday string) (ItemOutcome, error) {
	active, err := timing.ActiveOn(weekday)
	if err != nil {
		return OutcomeFailed, err
	}
	if !active {
		return OutcomeSkippedDay, nil
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return OutcomeFailed, err
	}

	checkin := &model.SafetyCheckin{
		PublicID:      publicID,
		TimingID:      timing.ID,
		UserID:        timing.UserID,
		OrgID:         timing.OrgID,
		CheckinDate:   today,
		ScheduledTime: timing.Time,
		Status:        model.CheckinStatusPending,
		SnoozeCount:   0,
	}

	created, err := e.checkins.CreateIfAbsent(ctx, checkin)
	if err != nil {
		return OutcomeFailed, err
	}
	if !created {
		return OutcomeSkippedExists, nil
	}

	metrics.GetMetrics().RecordCheckinCreated(ctx)

	// 首次提醒失败不回滚实例，snooze 循环会继续追
	e.dispatcher.SendInitialCheckin(ctx, checkin, timing.Label)

	if e.events != nil {
		_ = e.events.PublishCheckinEvent(ctx, model.CheckinEventMessage{
			Event:       model.CheckinEventCreated,
			CheckinID:   checkin.PublicID,
			TimingID:    timing.ID,
			UserID:      timing.UserID,
			OrgID:       timing.OrgID,
			CheckinDate: utils.DateString(today),
			OccurredAt:  e.now().Format(time.RFC3339),
		})
	}

	return OutcomeCreated, nil
}
