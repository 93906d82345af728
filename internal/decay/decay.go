package decay

import (
	"time"

	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/model"
)

// Engine 纯计算：由计数与年龄推出内容的剩余寿命，无 I/O。
// 线性模型：每个赞 +86.4s（1000 赞约等于一天），评论计双倍，踩扣半个赞。
type Engine struct {
	cfg config.DecayConfig
}

func NewEngine(cfg config.DecayConfig) *Engine { return &Engine{cfg: cfg} }

// Remaining 返回剩余寿命（秒）。gold 内容永不过期，infinite 为 true。
// 结果下限为 0，不会出现负数。
func (e *Engine) Remaining(p *model.Post, now time.Time) (seconds float64, infinite bool) {
	if p.Tier == model.TierGold {
		return 0, true
	}
	elapsed := now.Sub(p.CreatedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	base := e.cfg.BaseSeconds + e.tierBonus(p.Tier)
	remaining := base +
		float64(p.LikeCount)*e.cfg.PerLikeSeconds +
		float64(p.CommentCount)*e.cfg.PerCommentSeconds -
		float64(p.DislikeCount)*e.cfg.PerDislikeSeconds -
		elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, false
}

// Expired 剩余寿命为 0 且非 gold
func (e *Engine) Expired(p *model.Post, now time.Time) bool {
	remaining, infinite := e.Remaining(p, now)
	return !infinite && remaining <= 0
}

func (e *Engine) tierBonus(tier string) float64 {
	switch tier {
	case model.TierBronze:
		return e.cfg.BronzeBonus
	case model.TierSilver:
		return e.cfg.SilverBonus
	default:
		return 0
	}
}
