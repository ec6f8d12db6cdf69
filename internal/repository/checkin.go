package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"KnocksterSafety/internal/model"
)

type checkinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) CheckinRepository {
	return &checkinRepository{db: db}
}

func (r *checkinRepository) CreateIfAbsent(ctx context.Context, checkin *model.SafetyCheckin) (bool, error) {
	// 存在性检查交给唯一索引：重叠运行都可能通过应用层检查，
	// ON CONFLICT DO NOTHING 把冲突吸收成 "已存在，跳过"
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "timing_id"}, {Name: "checkin_date"}},
			DoNothing: true,
		}).
		Create(checkin)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *checkinRepository) ListSnoozedBefore(ctx context.Context, cutoff time.Time) ([]*model.SafetyCheckin, error) {
	var checkins []*model.SafetyCheckin

	err := r.db.WithContext(ctx).
		Where("status = ?", model.CheckinStatusSnoozed).
		Where("last_snooze_at <= ?", cutoff).
		Find(&checkins).Error
	if err != nil {
		return nil, err
	}

	return checkins, nil
}

func (r *checkinRepository) Escalate(ctx context.Context, checkinID int64, alert *model.SafetyAlert) (bool, error) {
	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 状态 CAS 是序列化点：只有仍处于 snoozed 的实例才能继续创建告警
		result := tx.Model(&model.SafetyCheckin{}).
			Where("id = ? AND status = ?", checkinID, model.CheckinStatusSnoozed).
			Updates(map[string]interface{}{
				"status":     model.CheckinStatusEscalated,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// 已被并发运行升级或被用户响应，不再创建第二条告警
			return nil
		}

		if err := tx.Create(alert).Error; err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

func (r *checkinRepository) AdvanceSnooze(ctx context.Context, checkinID int64, fromCount int, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.SafetyCheckin{}).
		Where("id = ? AND status = ? AND snooze_count = ?",
			checkinID, model.CheckinStatusSnoozed, fromCount).
		Updates(map[string]interface{}{
			"snooze_count":   fromCount + 1,
			"last_snooze_at": at,
			"updated_at":     at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *checkinRepository) Snooze(ctx context.Context, publicID int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.SafetyCheckin{}).
		Where("public_id = ? AND status IN ?", publicID,
			[]model.CheckinStatus{model.CheckinStatusPending, model.CheckinStatusSnoozed}).
		Updates(map[string]interface{}{
			"status":         model.CheckinStatusSnoozed,
			"last_snooze_at": at,
			"updated_at":     at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *checkinRepository) Respond(ctx context.Context, publicID int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.SafetyCheckin{}).
		Where("public_id = ? AND status IN ?", publicID,
			[]model.CheckinStatus{model.CheckinStatusPending, model.CheckinStatusSnoozed}).
		Updates(map[string]interface{}{
			"status":       model.CheckinStatusCompleted,
			"responded_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *checkinRepository) FindByPublicID(ctx context.Context, publicID int64) (*model.SafetyCheckin, error) {
	var checkin model.SafetyCheckin

	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&checkin).Error
	if err != nil {
		return nil, err
	}

	return &checkin, nil
}
