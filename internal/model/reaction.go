package model

import "time"

// 反应类型
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Reaction 用户对内容的赞/踩
type Reaction struct {
	ID     string `gorm:"primaryKey;type:varchar(36)"`
	PostID string `gorm:"type:varchar(36);index:idx_reaction_post;index:idx_reaction_pair,unique;not null"`
	UserID string `gorm:"type:varchar(36);not null;index:idx_reaction_pair,unique"`
	// 复合唯一键，保证一人一条
	// idx_reaction_pair = (post_id, user_id)
	Kind      string `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Reaction) TableName() string { return "reactions" }
