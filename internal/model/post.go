package model

import "time"

// 内容等级：gold 永不过期
const (
	TierNone   = "none"
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

// TierRank 等级序（用于只升不降）
func TierRank(tier string) int {
	switch tier {
	case TierBronze:
		return 1
	case TierSilver:
		return 2
	case TierGold:
		return 3
	default:
		return 0
	}
}

// Post 内容主体：互动计数 + 等级。剩余寿命由 decay 包按需计算，不落库
type Post struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID     string `gorm:"type:varchar(36);index:idx_post_author;not null"`
	LikeCount    int64  `gorm:"not null;default:0"`
	DislikeCount int64  `gorm:"not null;default:0"`
	CommentCount int64  `gorm:"not null;default:0"`
	Tier         string `gorm:"type:varchar(16);index;not null;default:none"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Post) TableName() string { return "posts" }

// PostBody 内容正文，与 Post 同事务创建、级联删除
type PostBody struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(36);uniqueIndex;not null"`
	Text      string `gorm:"type:text"`
	CreatedAt time.Time
}

func (PostBody) TableName() string { return "post_bodies" }
