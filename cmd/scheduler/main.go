package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"KnocksterSafety/config"
	"KnocksterSafety/internal/schedule"
	"KnocksterSafety/pkg/fcm"
	"KnocksterSafety/pkg/logger"
	"KnocksterSafety/pkg/metrics"
	pkgotel "KnocksterSafety/pkg/otel"
	"KnocksterSafety/pkg/snowflake"
	"KnocksterSafety/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	otelShutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
		ServiceName:  config.Cfg.ServiceName + "-scheduler",
		Environment:  config.Cfg.Environment,
		OTLPEndpoint: config.Cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize business metrics", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := fcm.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize FCM client", zap.Error(err))
		logger.Logger.Info("Push delivery will be disabled until FCM is configured")
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.String("timezone", config.Cfg.Timezone),
	)

	go runTimingEvaluationLoop(ctx)
	go runSnoozeMonitoringLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runTimingEvaluationLoop 每分钟评估到点的打卡配置并创建当日实例
func runTimingEvaluationLoop(ctx context.Context) {
	evaluator := schedule.GetTimingEvaluator()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	logger.Logger.Info("Timing evaluation loop started with 1m interval")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, config.Cfg.JobRunTimeout)
			if _, err := evaluator.Run(runCtx); err != nil {
				logger.Logger.Error("Timing evaluation run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runSnoozeMonitoringLoop 每分钟巡检超时未响应的 snoozed 实例
func runSnoozeMonitoringLoop(ctx context.Context) {
	monitor := schedule.GetSnoozeMonitor()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	logger.Logger.Info("Snooze monitoring loop started with 1m interval")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, config.Cfg.JobRunTimeout)
			if _, err := monitor.Run(runCtx); err != nil {
				logger.Logger.Error("Snooze monitoring run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
