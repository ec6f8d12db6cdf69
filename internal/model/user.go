package model

// 用户、档案与设备表由组织侧后台维护，这里只读

// User 用户模型
type User struct {
	BaseModel
	OrgID    int64  `gorm:"not null;index:idx_users_org" json:"org_id"`
	Nickname string `gorm:"type:varchar(64);not null;default:''" json:"nickname"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// UserProfile 用户档案，full_name 用于告警文案
type UserProfile struct {
	BaseModel
	UserID   int64  `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName string `gorm:"type:varchar(128);not null;default:''" json:"full_name"`
}

// TableName 指定表名
func (UserProfile) TableName() string {
	return "user_profiles"
}

// UserDevice 用户注册的推送设备
type UserDevice struct {
	BaseModel
	UserID      int64  `gorm:"not null;index:idx_user_devices_user" json:"user_id"`
	DeviceToken string `gorm:"type:varchar(255);not null" json:"device_token"`
	IsActive    bool   `gorm:"not null;default:true;index:idx_user_devices_user" json:"is_active"`
}

// TableName 指定表名
func (UserDevice) TableName() string {
	return "user_devices"
}
