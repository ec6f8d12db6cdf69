package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"KnocksterSafety/internal/handler"
	"KnocksterSafety/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Healthz)

	v1 := h.Group("/v1")

	// 打卡实例路由
	checkIns := v1.Group("/check-ins")
	{
		checkIns.GET("/:checkin_id", handler.GetCheckin)
		checkIns.POST("/:checkin_id/snooze", handler.SnoozeCheckin)
		checkIns.POST("/:checkin_id/respond", handler.RespondCheckin)
	}

	// 内部任务触发路由，部署时应只暴露在内网
	jobs := h.Group("/internal/jobs")
	{
		jobs.POST("/timing-evaluator", handler.RunTimingEvaluation)
		jobs.POST("/snooze-monitor", handler.RunSnoozeMonitoring)
	}
}
