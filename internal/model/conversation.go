package model

import "time"

// Conversation 会话
type Conversation struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time
}

func (Conversation) TableName() string { return "conversations" }

// Participant 会话成员
type Participant struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	ConversationID string `gorm:"type:varchar(36);index:idx_participant_conv;index:idx_participant_pair,unique;not null"`
	UserID         string `gorm:"type:varchar(36);not null;index:idx_participant_pair,unique"`
	// idx_participant_pair = (conversation_id, user_id)
	CreatedAt time.Time
}

func (Participant) TableName() string { return "participants" }

// Message 私信。ExpiresAt 发送时按成员分数一次性算定，此后不再延长
type Message struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)"`
	ConversationID string    `gorm:"type:varchar(36);index:idx_message_conv;not null"`
	SenderID       string    `gorm:"type:varchar(36);not null"`
	Body           string    `gorm:"type:text"`
	ExpiresAt      time.Time `gorm:"index;not null"`
	CreatedAt      time.Time
}

func (Message) TableName() string { return "messages" }
