package model

import "time"

// User 账号；Email 区分大小写且唯一，Password 为不透明哈希
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;index:idx_user_name" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_user_email" json:"email"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"`
	AvatarRef string    `gorm:"type:varchar(255)" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }
