package model

import "time"

// LifetimeRecord 删除归档：记录内容活了多久。只追加，不修改
type LifetimeRecord struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)"`
	OwnerID         string    `gorm:"type:varchar(36);index:idx_record_owner;not null"`
	PostID          string    `gorm:"type:varchar(36);index;not null"`
	PostCreatedAt   time.Time `gorm:"not null"`
	DeletedAt       time.Time `gorm:"not null"`
	LifetimeSeconds float64   `gorm:"not null"`
	CreatedAt       time.Time
}

func (LifetimeRecord) TableName() string { return "lifetime_records" }
