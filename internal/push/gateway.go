package push

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"KnocksterSafety/config"
	"KnocksterSafety/internal/repository"
)

// Outcome 单次投递的结果，投递失败不作为 error 向上传播
type Outcome struct {
	Delivered    bool
	ErrorMessage string
}

// Sender 底层推送通道（FCM HTTP v1 客户端实现）
type Sender interface {
	SendToDevice(ctx context.Context, deviceToken, title, body string, data map[string]string) error
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

// Gateway 通知网关：按用户做设备扇出，按组织做管理员主题投递
type Gateway struct {
	logger *zap.Logger
	users  repository.UserRepository
	sender Sender
}

func NewGateway(logger *zap.Logger, users repository.UserRepository, sender Sender) *Gateway {
	return &Gateway{
		logger: logger,
		users:  users,
		sender: sender,
	}
}

// SendToUser 向用户全部激活设备投递，至少一台成功即视为投递成功
func (g *Gateway) SendToUser(ctx context.Context, userID int64, title, body string, data map[string]string) Outcome {
	if g.sender == nil {
		return Outcome{Delivered: false, ErrorMessage: "push sender not configured"}
	}

	tokens, err := g.users.ActiveDeviceTokens(ctx, userID)
	if err != nil {
		g.logger.Error("Failed to query active devices",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return Outcome{Delivered: false, ErrorMessage: fmt.Sprintf("device lookup failed: %v", err)}
	}

	if len(tokens) == 0 {
		return Outcome{Delivered: false, ErrorMessage: "no active devices"}
	}

	delivered := 0
	var lastErr error
	for _, token := range tokens {
		if err := g.sender.SendToDevice(ctx, token, title, body, data); err != nil {
			lastErr = err
			g.logger.Warn("Device delivery failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return Outcome{Delivered: false, ErrorMessage: fmt.Sprintf("all devices failed: %v", lastErr)}
	}

	return Outcome{Delivered: true}
}

// SendToOrgAdmins 向组织管理员主题投递
func (g *Gateway) SendToOrgAdmins(ctx context.Context, orgID int64, title, body string, data map[string]string) Outcome {
	if g.sender == nil {
		return Outcome{Delivered: false, ErrorMessage: "push sender not configured"}
	}

	topic := fmt.Sprintf(config.Cfg.AdminTopicPrefix, orgID)

	if err := g.sender.SendToTopic(ctx, topic, title, body, data); err != nil {
		g.logger.Warn("Topic delivery failed",
			zap.Int64("org_id", orgID),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return Outcome{Delivered: false, ErrorMessage: err.Error()}
	}

	return Outcome{Delivered: true}
}
