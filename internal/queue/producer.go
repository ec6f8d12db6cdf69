package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/pkg/logger"
	"KnocksterSafety/pkg/snowflake"
	"KnocksterSafety/storage/mq"
)

// Producer 向 safety.events 交换机发布生命周期事件
// 事件发布是 best-effort，失败只记日志，不影响状态机落库
type Producer struct{}

func NewProducer() *Producer {
	return &Producer{}
}

func (p *Producer) PublishCheckinEvent(ctx context.Context, msg model.CheckinEventMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("generate message id: %w", err)
		}
		msg.MessageID = fmt.Sprintf("evt_%d", id)
	}

	routingKey := "checkin." + msg.Event

	if err := mq.PublishMessage(mq.EventsExchange, routingKey, msg); err != nil {
		logger.Logger.Error("Failed to publish checkin event",
			zap.String("message_id", msg.MessageID),
			zap.String("event", msg.Event),
			zap.Int64("checkin_id", msg.CheckinID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Debug("Checkin event published",
		zap.String("message_id", msg.MessageID),
		zap.String("event", msg.Event),
		zap.Int64("checkin_id", msg.CheckinID),
	)
	return nil
}
