package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"KnocksterSafety/internal/schedule"
	"KnocksterSafety/pkg/response"
)

// 内部运维触发接口，与定时触发共用同一套任务实现
// 锁被其他副本占用时返回 skipped，不算错误

// RunTimingEvaluation 手动触发一轮配置评估
// POST /internal/jobs/timing-evaluator
func RunTimingEvaluation(ctx context.Context, c *app.RequestContext) {
	report, err := schedule.GetTimingEvaluator().Run(ctx)
	writeJobResult(ctx, c, report, err)
}

// RunSnoozeMonitoring 手动触发一轮 snooze 巡检
// POST /internal/jobs/snooze-monitor
func RunSnoozeMonitoring(ctx context.Context, c *app.RequestContext) {
	report, err := schedule.GetSnoozeMonitor().Run(ctx)
	writeJobResult(ctx, c, report, err)
}

func writeJobResult(ctx context.Context, c *app.RequestContext, report *schedule.RunReport, err error) {
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	if report == nil {
		response.Success(ctx, c, map[string]interface{}{"skipped": true})
		return
	}

	response.SuccessWithMeta(ctx, c, report, map[string]interface{}{
		"summary": report.Summary(),
	})
}
