package repository

import (
	"context"

	"gorm.io/gorm"

	"KnocksterSafety/internal/model"
)

type snoozeLogRepository struct {
	db *gorm.DB
}

func NewSnoozeLogRepository(db *gorm.DB) SnoozeLogRepository {
	return &snoozeLogRepository{db: db}
}

func (r *snoozeLogRepository) Append(ctx context.Context, log *model.SafetySnoozeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

type notificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Append(ctx context.Context, log *model.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
