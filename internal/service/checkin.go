package service

import (
	"context"
	goerrors "errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/internal/repository"
	"KnocksterSafety/pkg/errors"
)

// CheckinService 外部触发的状态迁移：用户延后 / 用户响应
// 全部是状态守卫下的条件更新，升级和响应赛跑时先落库者胜出
type CheckinService struct {
	logger   *zap.Logger
	checkins repository.CheckinRepository
}

func NewCheckinService(logger *zap.Logger, checkins repository.CheckinRepository) *CheckinService {
	return &CheckinService{
		logger:   logger,
		checkins: checkins,
	}
}

// Snooze pending|snoozed -> snoozed
// last_snooze_at 在进入 snoozed 时就打点，第一条追加提醒从用户延后时刻起算完整间隔
func (s *CheckinService) Snooze(ctx context.Context, publicID int64, at time.Time) error {
	applied, err := s.checkins.Snooze(ctx, publicID, at)
	if err != nil {
		return err
	}

	if !applied {
		return errors.CheckinNotActionable
	}

	s.logger.Info("Check-in snoozed",
		zap.Int64("checkin_id", publicID),
		zap.Time("snoozed_at", at),
	)
	return nil
}

// Respond pending|snoozed -> completed
func (s *CheckinService) Respond(ctx context.Context, publicID int64, at time.Time) error {
	applied, err := s.checkins.Respond(ctx, publicID, at)
	if err != nil {
		return err
	}

	if !applied {
		return errors.CheckinNotActionable
	}

	s.logger.Info("Check-in completed",
		zap.Int64("checkin_id", publicID),
		zap.Time("responded_at", at),
	)
	return nil
}

// Get 按 public_id 查询实例状态
func (s *CheckinService) Get(ctx context.Context, publicID int64) (*model.SafetyCheckin, error) {
	checkin, err := s.checkins.FindByPublicID(ctx, publicID)
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.CheckinNotFound
		}
		return nil, err
	}

	return checkin, nil
}
