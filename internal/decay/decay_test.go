package decay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/model"
)

func testCfg() config.DecayConfig {
	return config.DecayConfig{
		BaseSeconds:       86400,
		BronzeBonus:       30 * 86400,
		SilverBonus:       365 * 86400,
		PerLikeSeconds:    86.4,
		PerCommentSeconds: 172.8,
		PerDislikeSeconds: 43.2,
	}
}

func TestRemaining_FreshPost(t *testing.T) {
	e := NewEngine(testCfg())
	now := time.Now()
	p := &model.Post{Tier: model.TierNone, CreatedAt: now}

	got, infinite := e.Remaining(p, now)
	assert.False(t, infinite)
	assert.InDelta(t, 86400, got, 0.01)
}

func TestRemaining_ExpiresAfterBase(t *testing.T) {
	e := NewEngine(testCfg())
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &model.Post{Tier: model.TierNone, CreatedAt: created}

	// 过了一天零一秒，零互动的内容该死了
	got, infinite := e.Remaining(p, created.Add(86401*time.Second))
	assert.False(t, infinite)
	assert.Equal(t, 0.0, got)
	assert.True(t, e.Expired(p, created.Add(86401*time.Second)))

	// 刚好一天整点还活着（剩 0 即过期，边界取等号）
	got, _ = e.Remaining(p, created.Add(86400*time.Second))
	assert.Equal(t, 0.0, got)
}

func TestRemaining_BronzeWithEngagement(t *testing.T) {
	e := NewEngine(testCfg())
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &model.Post{
		Tier:         model.TierBronze,
		LikeCount:    10,
		CommentCount: 2,
		DislikeCount: 1,
		CreatedAt:    created,
	}

	// (86400 + 30*86400) + 10*86.4 + 2*172.8 - 1*43.2 - 86400 = 2,593,166.4
	got, infinite := e.Remaining(p, created.Add(24*time.Hour))
	assert.False(t, infinite)
	assert.InDelta(t, 2593166.4, got, 0.01)
}

func TestRemaining_GoldIsInfinite(t *testing.T) {
	e := NewEngine(testCfg())
	created := time.Now().Add(-10 * 365 * 24 * time.Hour)
	p := &model.Post{Tier: model.TierGold, DislikeCount: 100000, CreatedAt: created}

	_, infinite := e.Remaining(p, time.Now())
	assert.True(t, infinite)
	assert.False(t, e.Expired(p, time.Now()))
}

func TestRemaining_NeverNegative(t *testing.T) {
	e := NewEngine(testCfg())
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &model.Post{Tier: model.TierNone, DislikeCount: 99999, CreatedAt: created}

	got, _ := e.Remaining(p, created.AddDate(5, 0, 0))
	assert.Equal(t, 0.0, got)
}

func TestRemaining_ClockSkewClamped(t *testing.T) {
	e := NewEngine(testCfg())
	created := time.Now()
	p := &model.Post{Tier: model.TierNone, CreatedAt: created}

	// now 在 createdAt 之前（时钟漂移）按 elapsed=0 算
	got, _ := e.Remaining(p, created.Add(-time.Hour))
	assert.InDelta(t, 86400, got, 0.01)
}

func TestRemaining_DislikeCostsHalfALike(t *testing.T) {
	e := NewEngine(testCfg())
	now := time.Now()
	liked := &model.Post{Tier: model.TierNone, LikeCount: 2, CreatedAt: now}
	disliked := &model.Post{Tier: model.TierNone, LikeCount: 2, DislikeCount: 4, CreatedAt: now}

	a, _ := e.Remaining(liked, now)
	b, _ := e.Remaining(disliked, now)
	assert.InDelta(t, 2*86.4, a-b, 0.01)
}
