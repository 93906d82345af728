package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateScore(ctx context.Context, userID string, score float64) error
	// GetScores 批量读分数；缺失的用户按 0 计
	GetScores(ctx context.Context, userIDs []string) (map[string]float64, error)
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateScore(ctx context.Context, userID string, score float64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("score", score).Error
}

func (r *userRepository) GetScores(ctx context.Context, userIDs []string) (map[string]float64, error) {
	type row struct {
		ID    string
		Score float64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("id, score").
		Where("id IN ?", userIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	res := make(map[string]float64, len(userIDs))
	for _, id := range userIDs {
		res[id] = 0
	}
	for _, v := range rows {
		res[v.ID] = v.Score
	}
	return res, nil
}
