package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"KnocksterSafety/config"
)

// 消息拓扑：
// safety.events  (topic)  - 本服务发布的打卡生命周期事件，下游自建队列消费
// safety.actions (direct) - App 后端发布的状态迁移动作，worker 消费固定队列

const (
	EventsExchange  = "safety.events"
	ActionsExchange = "safety.actions"
	ActionsQueue    = "safety.checkin.actions"
	ActionsKey      = "checkin.action"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()
		conn, connErr = amqp.Dial(url)
		if connErr != nil {
			return
		}

		connErr = declareTopology()
	})

	return connErr
}

// Connection 获取底层连接
func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open topology channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare events exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(ActionsExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare actions exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(ActionsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare actions queue: %w", err)
	}

	if err := ch.QueueBind(ActionsQueue, ActionsKey, ActionsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind actions queue: %w", err)
	}

	return nil
}
