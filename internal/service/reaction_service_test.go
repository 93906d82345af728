package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/model"
	"github.com/d60-Lab/vanish/internal/repository"
)

func newReactionService(db *gorm.DB) ReactionService {
	return NewReactionService(db, repository.NewPostRepository(db), decay.NewClassifier(nil), nil)
}

func countReactions(t *testing.T, db *gorm.DB, postID string) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, db.Model(&model.Reaction{}).Where("post_id = ?", postID).Count(&cnt).Error)
	return cnt
}

func TestToggle_CreateRemoveCycle(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	post := seedPost(t, db, "alice", time.Now())
	svc := newReactionService(db)
	ctx := context.Background()

	// none → liked
	res, err := svc.Toggle(ctx, post.ID, "bob", model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ToggleCreated, res)
	assert.Equal(t, int64(1), reloadPost(t, db, post.ID).LikeCount)

	// liked → none（同向重按撤销）
	res, err = svc.Toggle(ctx, post.ID, "bob", model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, res)

	p := reloadPost(t, db, post.ID)
	assert.Equal(t, int64(0), p.LikeCount)
	assert.Equal(t, int64(0), countReactions(t, db, post.ID))
}

func TestToggle_SwitchFlipsBothCounters(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	post := seedPost(t, db, "alice", time.Now())
	svc := newReactionService(db)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, post.ID, "bob", model.ReactionLike)
	require.NoError(t, err)

	// liked → disliked
	res, err := svc.Toggle(ctx, post.ID, "bob", model.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, ToggleUpdated, res)

	p := reloadPost(t, db, post.ID)
	assert.Equal(t, int64(0), p.LikeCount)
	assert.Equal(t, int64(1), p.DislikeCount)
	// 始终只有一行
	assert.Equal(t, int64(1), countReactions(t, db, post.ID))

	// disliked → liked
	res, err = svc.Toggle(ctx, post.ID, "bob", model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ToggleUpdated, res)

	p = reloadPost(t, db, post.ID)
	assert.Equal(t, int64(1), p.LikeCount)
	assert.Equal(t, int64(0), p.DislikeCount)
}

func TestToggle_CounterNeverNegative(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	post := seedPost(t, db, "alice", time.Now())
	svc := newReactionService(db)
	ctx := context.Background()

	// 计数被外部压成 0 后撤销也不会掉到负数
	_, err := svc.Toggle(ctx, post.ID, "bob", model.ReactionLike)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", post.ID).UpdateColumn("like_count", 0).Error)

	_, err = svc.Toggle(ctx, post.ID, "bob", model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloadPost(t, db, post.ID).LikeCount)
}

func TestToggle_InvalidKind(t *testing.T) {
	db := setupDB(t)
	svc := newReactionService(db)

	_, err := svc.Toggle(context.Background(), "whatever", "bob", "love")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestToggle_PostNotFound(t *testing.T) {
	db := setupDB(t)
	svc := newReactionService(db)

	_, err := svc.Toggle(context.Background(), "missing", "bob", model.ReactionLike)
	assert.ErrorIs(t, err, ErrPostNotFound)
	// 回滚干净，不留孤儿台账行
	assert.Equal(t, int64(0), countReactions(t, db, "missing"))
}

func TestToggle_LikesPromoteTier(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	post := seedPost(t, db, "alice", time.Now())
	svc := newReactionService(db)
	ctx := context.Background()

	// 第 10 个赞触发 bronze
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", post.ID).UpdateColumn("like_count", 9).Error)
	_, err := svc.Toggle(ctx, post.ID, "bob", model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, model.TierBronze, reloadPost(t, db, post.ID).Tier)
}

func TestToggle_DislikeNeverChangesTier(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	post := seedPost(t, db, "alice", time.Now())
	svc := newReactionService(db)
	ctx := context.Background()

	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", post.ID).
		Updates(map[string]any{"like_count": 50, "tier": model.TierSilver}).Error)

	// 纯踩不碰等级
	_, err := svc.Toggle(ctx, post.ID, "bob", model.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, model.TierSilver, reloadPost(t, db, post.ID).Tier)

	// 赞改踩虽然动了赞数，也不触发分级扫描；等级只升不降
	_, err = svc.Toggle(ctx, post.ID, "carol", model.ReactionLike)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, post.ID, "carol", model.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, model.TierSilver, reloadPost(t, db, post.ID).Tier)
}

func TestToggle_UniqueConstraintBackstop(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "alice")
	post := seedPost(t, db, "alice", time.Now())

	// 直接撞唯一键：同 (post, user) 第二行必须被库拦下
	r1 := &model.Reaction{ID: "r1", PostID: post.ID, UserID: "bob", Kind: model.ReactionLike}
	require.NoError(t, db.Create(r1).Error)
	r2 := &model.Reaction{ID: "r2", PostID: post.ID, UserID: "bob", Kind: model.ReactionDislike}
	err := db.Create(r2).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
