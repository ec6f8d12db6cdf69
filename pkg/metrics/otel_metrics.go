package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 打卡状态机相关指标
	CheckinsCreatedTotal metric.Int64Counter
	RemindersSentTotal   metric.Int64Counter
	EscalationsTotal     metric.Int64Counter
	PushFailuresTotal    metric.Int64Counter
	JobRunDuration       metric.Float64Histogram
	JobItemsProcessed    metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("knockster-safety")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.CheckinsCreatedTotal, err = meter.Int64Counter(
		"checkins_created_total",
		metric.WithDescription("Total number of check-in instances created"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return err
	}

	metrics.RemindersSentTotal, err = meter.Int64Counter(
		"snooze_reminders_sent_total",
		metric.WithDescription("Total number of snooze reminders sent"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return err
	}

	metrics.EscalationsTotal, err = meter.Int64Counter(
		"escalations_total",
		metric.WithDescription("Total number of check-ins escalated after exhausting snoozes"),
		metric.WithUnit("{escalation}"),
	)
	if err != nil {
		return err
	}

	metrics.PushFailuresTotal, err = meter.Int64Counter(
		"push_failures_total",
		metric.WithDescription("Total number of failed push delivery attempts"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return err
	}

	metrics.JobRunDuration, err = meter.Float64Histogram(
		"job_run_duration_seconds",
		metric.WithDescription("Duration of one scheduled job run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.JobItemsProcessed, err = meter.Int64Counter(
		"job_items_processed_total",
		metric.WithDescription("Per-item outcomes of scheduled job runs"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordCheckinCreated 记录打卡实例创建
func (m *OTelMetrics) RecordCheckinCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.CheckinsCreatedTotal.Add(ctx, 1)
}

// RecordReminderSent 记录 snooze 提醒发送
func (m *OTelMetrics) RecordReminderSent(ctx context.Context, delivered bool) {
	if m == nil {
		return
	}
	m.RemindersSentTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("delivered", delivered)),
	)
}

// RecordEscalation 记录升级告警
func (m *OTelMetrics) RecordEscalation(ctx context.Context) {
	if m == nil {
		return
	}
	m.EscalationsTotal.Add(ctx, 1)
}

// RecordPushFailure 记录推送失败
func (m *OTelMetrics) RecordPushFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.PushFailuresTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("notification_type", kind)),
	)
}

// RecordJobRun 记录一次任务运行
func (m *OTelMetrics) RecordJobRun(ctx context.Context, job string, seconds float64) {
	if m == nil {
		return
	}
	m.JobRunDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("job", job)),
	)
}

// RecordJobItem 记录任务中单条数据的处理结果
func (m *OTelMetrics) RecordJobItem(ctx context.Context, job, outcome string) {
	if m == nil {
		return
	}
	m.JobItemsProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("job", job),
			attribute.String("outcome", outcome),
		),
	)
}
