package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScoreCache 用户分数的读穿缓存。
// 分数本来就是异步派生值，读到略旧的没关系（算私信 TTL 时不加锁）。
type ScoreCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewScoreCache(rdb *redis.Client, ttl time.Duration) *ScoreCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScoreCache{rdb: rdb, ttl: ttl}
}

func scoreKey(userID string) string { return fmt.Sprintf("score:%s", userID) }

// GetScores 批量读缓存，返回命中的部分；未命中由调用方回源
func (c *ScoreCache) GetScores(ctx context.Context, userIDs []string) (map[string]float64, []string, error) {
	if len(userIDs) == 0 {
		return map[string]float64{}, nil, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = scoreKey(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, userIDs, err
	}
	hit := make(map[string]float64, len(userIDs))
	var miss []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			miss = append(miss, userIDs[i])
			continue
		}
		f, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			miss = append(miss, userIDs[i])
			continue
		}
		hit[userIDs[i]] = f
	}
	return hit, miss, nil
}

// SetScore 刷新落库后回填缓存
func (c *ScoreCache) SetScore(ctx context.Context, userID string, score float64) error {
	return c.rdb.Set(ctx, scoreKey(userID), strconv.FormatFloat(score, 'f', -1, 64), c.ttl).Err()
}

func (c *ScoreCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, scoreKey(userID)).Err()
}
