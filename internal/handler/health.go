package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"KnocksterSafety/config"
)

// Healthz 存活探针
// GET /healthz
func Healthz(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": config.Cfg.ServiceName,
		"time":    time.Now().Format(time.RFC3339),
	})
}
