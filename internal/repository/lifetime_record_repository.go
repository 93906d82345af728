package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/model"
)

// 归档行本身在删除事务里落地，这里只提供查询
type LifetimeRecordRepository interface {
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.LifetimeRecord, error)
}

type lifetimeRecordRepository struct{ db *gorm.DB }

func NewLifetimeRecordRepository(db *gorm.DB) LifetimeRecordRepository {
	return &lifetimeRecordRepository{db: db}
}

func (r *lifetimeRecordRepository) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.LifetimeRecord, error) {
	var res []*model.LifetimeRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("deleted_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
