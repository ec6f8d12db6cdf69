package repository

import (
	"context"

	"gorm.io/gorm"

	"KnocksterSafety/internal/model"
)

type timingRepository struct {
	db *gorm.DB
}

func NewTimingRepository(db *gorm.DB) TimingRepository {
	return &timingRepository{db: db}
}

func (r *timingRepository) ListFiringAt(ctx context.Context, clockMinute string) ([]*model.SafetyTiming, error) {
	var timings []*model.SafetyTiming

	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("to_char(time, 'HH24:MI') = ?", clockMinute).
		Find(&timings).Error
	if err != nil {
		return nil, err
	}

	return timings, nil
}
