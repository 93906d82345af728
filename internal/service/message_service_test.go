package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/model"
	"github.com/d60-Lab/vanish/internal/repository"
)

func newMessageService(db *gorm.DB) *MessageService {
	return NewMessageService(repository.NewMessageRepository(db), newScoreService(db), 86400)
}

func setScore(t *testing.T, db *gorm.DB, userID string, score float64) {
	t.Helper()
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", userID).Update("score", score).Error)
}

func TestDeriveExpiry_MeanOfScores(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	setScore(t, db, "alice", 0)
	setScore(t, db, "bob", 200000)

	svc := newMessageService(db)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// mean(0, 200000) = 100000 > 86400 下限
	expiry, err := svc.DeriveExpiry(context.Background(), []string{"alice", "bob"}, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(100000*time.Second), expiry)
}

func TestDeriveExpiry_FloorOneDay(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	svc := newMessageService(db)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// 全员 0 分也至少活一天
	expiry, err := svc.DeriveExpiry(context.Background(), []string{"alice", "bob"}, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(86400*time.Second), expiry)
}

func TestSend_SetsExpiryOnce(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	setScore(t, db, "alice", 100000)
	setScore(t, db, "bob", 300000)

	svc := newMessageService(db)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return now })
	ctx := context.Background()

	convID, err := svc.CreateConversation(ctx, []string{"alice", "bob"})
	require.NoError(t, err)

	msg, err := svc.Send(ctx, convID, "alice", "hey")
	require.NoError(t, err)
	assert.Equal(t, now.Add(200000*time.Second), msg.ExpiresAt)

	// 发送后分数再变也不影响已发消息
	setScore(t, db, "bob", 0)
	var stored model.Message
	require.NoError(t, db.Where("id = ?", msg.ID).First(&stored).Error)
	assert.Equal(t, msg.ExpiresAt.UTC(), stored.ExpiresAt.UTC())
}

func TestSend_RejectsOutsiders(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedUser(t, db, "mallory")

	svc := newMessageService(db)
	ctx := context.Background()
	convID, err := svc.CreateConversation(ctx, []string{"alice", "bob"})
	require.NoError(t, err)

	_, err = svc.Send(ctx, convID, "mallory", "let me in")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.Send(ctx, "missing-conv", "alice", "hello?")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestAddParticipant_OnlyMembersInvite(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedUser(t, db, "carol")
	seedUser(t, db, "mallory")

	svc := newMessageService(db)
	ctx := context.Background()
	convID, err := svc.CreateConversation(ctx, []string{"alice", "bob"})
	require.NoError(t, err)

	err = svc.AddParticipant(ctx, convID, "mallory", "carol")
	assert.ErrorIs(t, err, ErrNotParticipant)

	require.NoError(t, svc.AddParticipant(ctx, convID, "alice", "carol"))
	// 重复拉人幂等
	require.NoError(t, svc.AddParticipant(ctx, convID, "alice", "carol"))

	_, err = svc.Send(ctx, convID, "carol", "hi all")
	require.NoError(t, err)

	err = svc.AddParticipant(ctx, "missing-conv", "alice", "carol")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestList_HidesExpired(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	svc := newMessageService(db)
	ctx := context.Background()
	convID, err := svc.CreateConversation(ctx, []string{"alice", "bob"})
	require.NoError(t, err)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return base })
	msg, err := svc.Send(ctx, convID, "alice", "ephemeral")
	require.NoError(t, err)

	list, err := svc.List(ctx, convID, 1, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, msg.ID, list[0].ID)

	// 时间拨过到期点，读不到了（行还在，等 sweeper 清）
	svc.SetNow(func() time.Time { return msg.ExpiresAt.Add(time.Second) })
	list, err = svc.List(ctx, convID, 1, 50)
	require.NoError(t, err)
	assert.Len(t, list, 0)
}
