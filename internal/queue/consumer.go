package queue

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"time"

	"go.uber.org/zap"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/internal/service"
	"KnocksterSafety/pkg/errors"
	"KnocksterSafety/pkg/logger"
	"KnocksterSafety/storage/mq"
)

// StartConsumers 启动全部消费者，连接断开后带退避重连，ctx 取消后退出
func StartConsumers(ctx context.Context, checkins *service.CheckinService) {
	go runActionConsumer(ctx, checkins)
}

func runActionConsumer(ctx context.Context, checkins *service.CheckinService) {
	for {
		err := mq.Consume(ctx, mq.ConsumeOptions{
			Queue:         mq.ActionsQueue,
			ConsumerTag:   "checkin-action-worker",
			PrefetchCount: 8,
			Handler: func(body []byte) error {
				return handleCheckinAction(ctx, checkins, body)
			},
		})

		if ctx.Err() != nil {
			logger.Logger.Info("Action consumer stopped")
			return
		}

		logger.Logger.Warn("Action consumer disconnected, retrying", zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// handleCheckinAction 处理外部触发的延后/响应动作
// 数据类错误（坏 JSON、未知动作、不可操作状态）直接 ack 丢弃，重试不会改变结果
// 存储类错误返回 error 触发 Nack 重回队列
func handleCheckinAction(ctx context.Context, checkins *service.CheckinService, body []byte) error {
	var msg model.CheckinActionMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Logger.Error("Failed to unmarshal checkin action", zap.Error(err))
		return nil
	}

	actedAt, err := time.Parse(time.RFC3339, msg.ActedAt)
	if err != nil {
		actedAt = time.Now()
	}

	switch msg.Action {
	case model.CheckinActionSnooze:
		err = checkins.Snooze(ctx, msg.CheckinID, actedAt)
	case model.CheckinActionRespond:
		err = checkins.Respond(ctx, msg.CheckinID, actedAt)
	default:
		logger.Logger.Warn("Unknown checkin action",
			zap.String("message_id", msg.MessageID),
			zap.String("action", msg.Action),
		)
		return nil
	}

	if err != nil {
		// 已完成/已升级的实例上的动作不可重试，丢弃
		if goerrors.Is(err, errors.CheckinNotActionable) || goerrors.Is(err, errors.CheckinNotFound) {
			logger.Logger.Info("Checkin action not applicable",
				zap.String("message_id", msg.MessageID),
				zap.String("action", msg.Action),
				zap.Int64("checkin_id", msg.CheckinID),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	logger.Logger.Info("Checkin action applied",
		zap.String("message_id", msg.MessageID),
		zap.String("action", msg.Action),
		zap.Int64("checkin_id", msg.CheckinID),
	)
	return nil
}
