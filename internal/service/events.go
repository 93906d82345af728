package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// 对外事件主题
const (
	TopicContentExpired = "content.expired"
)

// ExpiredEvent 内容被清扫时发布给实时层
type ExpiredEvent struct {
	PostID          string  `json:"post_id"`
	OwnerID         string  `json:"owner_id"`
	LifetimeSeconds float64 `json:"lifetime_seconds"`
}

// EventPublisher 发布即忘，扇出与连接管理在外部实时层
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type redisPublisher struct{ rdb *redis.Client }

func NewRedisPublisher(rdb *redis.Client) EventPublisher { return &redisPublisher{rdb: rdb} }

func (p *redisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, topic, data).Err()
}

type noopPublisher struct{}

// NewNoopPublisher 未配置 redis 时的空实现
func NewNoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, string, any) error { return nil }
