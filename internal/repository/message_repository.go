package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/vanish/internal/model"
)

type MessageRepository interface {
	CreateConversation(ctx context.Context, conv *model.Conversation, userIDs []string) error
	AddParticipant(ctx context.Context, conversationID, userID string) error
	ListParticipants(ctx context.Context, conversationID string) ([]string, error)
	Create(ctx context.Context, msg *model.Message) error
	// ListUnexpired 只返回未到期的消息，过期行等 sweeper 清理
	ListUnexpired(ctx context.Context, conversationID string, now time.Time, offset, limit int) ([]*model.Message, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type messageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) MessageRepository { return &messageRepository{db: db} }

func (r *messageRepository) CreateConversation(ctx context.Context, conv *model.Conversation, userIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, uid := range userIDs {
			p := &model.Participant{ID: uuid.New().String(), ConversationID: conv.ID, UserID: uid}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *messageRepository) AddParticipant(ctx context.Context, conversationID, userID string) error {
	p := &model.Participant{ID: uuid.New().String(), ConversationID: conversationID, UserID: userID}
	// 幂等：重复加入不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p).Error
}

func (r *messageRepository) ListParticipants(ctx context.Context, conversationID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Participant{}).
		Select("user_id").
		Where("conversation_id = ?", conversationID).
		Scan(&ids).Error
	return ids, err
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListUnexpired(ctx context.Context, conversationID string, now time.Time, offset, limit int) ([]*model.Message, error) {
	var res []*model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND expires_at > ?", conversationID, now).
		Order("created_at").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *messageRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.Message{})
	return res.RowsAffected, res.Error
}
