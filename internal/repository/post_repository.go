package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/model"
)

type PostRepository interface {
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	GetBody(ctx context.Context, postID string) (*model.PostBody, error)
	// ListSweepable 分页拉取可能过期的内容（gold 免死，直接跳过）
	ListSweepable(ctx context.Context, offset, limit int) ([]*model.Post, error)
	ListLiveByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	UpdateTier(ctx context.Context, postID, tier string) error
	Count(ctx context.Context) (int64, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", postID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetBody(ctx context.Context, postID string) (*model.PostBody, error) {
	var b model.PostBody
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postRepository) ListSweepable(ctx context.Context, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("tier <> ?", model.TierGold).
		Order("created_at").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListLiveByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).Where("author_id = ?", authorID).Find(&res).Error
	return res, err
}

// UpdateTier 只升不降由调用方保证，这里同时带 updated_at
func (r *postRepository) UpdateTier(ctx context.Context, postID, tier string) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		Updates(map[string]any{"tier": tier, "updated_at": time.Now()}).Error
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&cnt).Error
	return cnt, err
}
