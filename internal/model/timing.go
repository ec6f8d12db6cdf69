package model

import (
	"encoding/json"
	"fmt"
)

// SafetyTiming 周期性打卡时刻定义
// active_days 保存为原始 JSONB 字符串，在求值时才解析：
// 单条脏数据只跳过这一条 timing，不影响整个查询批次
type SafetyTiming struct {
	BaseModel
	UserID     int64  `gorm:"not null;index:idx_safety_timings_user" json:"user_id"`
	OrgID      int64  `gorm:"not null;index:idx_safety_timings_org" json:"org_id"`
	Label      string `gorm:"type:varchar(64);not null;default:''" json:"label"`
	Time       string `gorm:"type:time;not null;index:idx_safety_timings_time" json:"time"` // "HH:MM:SS"
	ActiveDays string `gorm:"type:jsonb;not null;default:'[]'" json:"active_days"`          // 小写星期名数组
	IsActive   bool   `gorm:"not null;default:true;index:idx_safety_timings_time" json:"is_active"`
}

// TableName 指定表名
func (SafetyTiming) TableName() string {
	return "safety_timings"
}

// ParseActiveDays 解析 active_days JSONB
func (t *SafetyTiming) ParseActiveDays() ([]string, error) {
	var days []string
	if err := json.Unmarshal([]byte(t.ActiveDays), &days); err != nil {
		return nil, fmt.Errorf("malformed active_days for timing %d: %w", t.ID, err)
	}
	return days, nil
}

// ActiveOn 判断给定星期（小写英文名）是否在激活日内
func (t *SafetyTiming) ActiveOn(weekday string) (bool, error) {
	days, err := t.ParseActiveDays()
	if err != nil {
		return false, err
	}
	for _, d := range days {
		if d == weekday {
			return true, nil
		}
	}
	return false, nil
}
