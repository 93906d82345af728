package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/model"
)

type ReactionRepository interface {
	Get(ctx context.Context, postID, userID string) (*model.Reaction, error)
}

type reactionRepository struct{ db *gorm.DB }

func NewReactionRepository(db *gorm.DB) ReactionRepository { return &reactionRepository{db: db} }

func (r *reactionRepository) Get(ctx context.Context, postID, userID string) (*model.Reaction, error) {
	var res model.Reaction
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}
