package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/vanish/internal/model"
	"github.com/d60-Lab/vanish/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("sender is not a participant")
)

// MessageService 私信。到期时间在发送时由成员分数一次性算定：
// 分数均值取整，但至少活一天；此后无论读或回复都不再续命
type MessageService struct {
	msgRepo      repository.MessageRepository
	scoreService *ScoreService
	minLifetime  float64
	now          func() time.Time
}

func NewMessageService(msgRepo repository.MessageRepository, scoreService *ScoreService, minLifetimeSeconds float64) *MessageService {
	if minLifetimeSeconds <= 0 {
		minLifetimeSeconds = 86400
	}
	return &MessageService{msgRepo: msgRepo, scoreService: scoreService, minLifetime: minLifetimeSeconds, now: time.Now}
}

// SetNow 注入时钟，测试用
func (s *MessageService) SetNow(now func() time.Time) { s.now = now }

// DeriveExpiry 由成员分数推出到期时间。
// 读的是异步派生的分数，略旧可以接受，不对成员加锁
func (s *MessageService) DeriveExpiry(ctx context.Context, participantIDs []string, now time.Time) (time.Time, error) {
	scores, err := s.scoreService.GetScores(ctx, participantIDs)
	if err != nil {
		return time.Time{}, err
	}
	var sum float64
	for _, id := range participantIDs {
		sum += scores[id]
	}
	avg := 0.0
	if len(participantIDs) > 0 {
		avg = sum / float64(len(participantIDs))
	}
	lifetime := math.Round(avg)
	if lifetime < s.minLifetime {
		lifetime = s.minLifetime
	}
	return now.Add(time.Duration(lifetime * float64(time.Second))), nil
}

// CreateConversation 建会话并登记成员
func (s *MessageService) CreateConversation(ctx context.Context, userIDs []string) (string, error) {
	conv := &model.Conversation{ID: uuid.New().String()}
	if err := s.msgRepo.CreateConversation(ctx, conv, userIDs); err != nil {
		return "", err
	}
	return conv.ID, nil
}

// AddParticipant 拉人进会话，只有现有成员能操作；重复拉人幂等
func (s *MessageService) AddParticipant(ctx context.Context, conversationID, operatorID, userID string) error {
	participants, err := s.msgRepo.ListParticipants(ctx, conversationID)
	if err != nil {
		return err
	}
	if len(participants) == 0 {
		return ErrConversationNotFound
	}
	isMember := false
	for _, id := range participants {
		if id == operatorID {
			isMember = true
			break
		}
	}
	if !isMember {
		return ErrNotParticipant
	}
	return s.msgRepo.AddParticipant(ctx, conversationID, userID)
}

// Send 发私信，ExpiresAt 只在这里算一次
func (s *MessageService) Send(ctx context.Context, conversationID, senderID, body string) (*model.Message, error) {
	participants, err := s.msgRepo.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, ErrConversationNotFound
	}
	isMember := false
	for _, id := range participants {
		if id == senderID {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil, ErrNotParticipant
	}

	now := s.now()
	expiresAt, err := s.DeriveExpiry(ctx, participants, now)
	if err != nil {
		return nil, err
	}
	msg := &model.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// List 只读未到期的消息
func (s *MessageService) List(ctx context.Context, conversationID string, page, pageSize int) ([]*model.Message, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	return s.msgRepo.ListUnexpired(ctx, conversationID, s.now(), offset, pageSize)
}
