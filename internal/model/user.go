package model

import "time"

// User 用户。Score 为派生值：名下存活内容剩余寿命的均值（秒），异步刷新
type User struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	Username  string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email     string  `gorm:"type:varchar(128);uniqueIndex;not null"`
	Password  string  `gorm:"type:varchar(128);not null"`
	Score     float64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
