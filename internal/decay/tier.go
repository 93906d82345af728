package decay

import (
	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/model"
)

// Classifier 按赞数阈值升级内容等级。
// 等级只升不降：赞数回落（比如赞改踩）不会触发降级。
type Classifier struct {
	tiers []config.TierThreshold
}

func NewClassifier(tiers []config.TierThreshold) *Classifier {
	if len(tiers) == 0 {
		tiers = config.DefaultTiers()
	}
	return &Classifier{tiers: tiers}
}

// Promote 返回应提升到的等级。当前等级已满足或更高时返回 ("", false)。
// 只在赞数变化后调用，踩不参与分级。
func (c *Classifier) Promote(p *model.Post) (string, bool) {
	best := p.Tier
	for _, t := range c.tiers {
		if p.LikeCount >= t.Likes && model.TierRank(t.Tier) > model.TierRank(best) {
			best = t.Tier
		}
	}
	if best == p.Tier {
		return "", false
	}
	return best, true
}
