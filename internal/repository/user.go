package repository

import (
	"context"

	"gorm.io/gorm"

	"KnocksterSafety/internal/model"
)

// UnknownUserName 档案缺失时告警文案使用的占位名
const UnknownUserName = "Unknown User"

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ActiveDeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	var tokens []string

	err := r.db.WithContext(ctx).
		Model(&model.UserDevice{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("device_token", &tokens).Error
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

func (r *userRepository) DisplayName(ctx context.Context, userID int64) (string, error) {
	var name string

	err := r.db.WithContext(ctx).
		Table("users").
		Select("COALESCE(NULLIF(user_profiles.full_name, ''), ?)", UnknownUserName).
		Joins("LEFT JOIN user_profiles ON users.id = user_profiles.user_id").
		Where("users.id = ?", userID).
		Scan(&name).Error
	if err != nil {
		return "", err
	}

	if name == "" {
		// 用户行都不存在时也回退占位名，缺档案不应中断升级流程
		name = UnknownUserName
	}

	return name, nil
}
