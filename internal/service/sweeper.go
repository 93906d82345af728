package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/model"
	"github.com/d60-Lab/vanish/internal/repository"
	"github.com/d60-Lab/vanish/pkg/logger"
)

// Sweeper 周期清扫：逐条重算剩余寿命，过期的级联删除并归档，
// 顺带清掉到期私信。单趟内单条失败不影响其余条目
type Sweeper struct {
	db        *gorm.DB
	postRepo  repository.PostRepository
	msgRepo   repository.MessageRepository
	engine    *decay.Engine
	refresher *ScoreRefresher // 可为 nil
	events    EventPublisher

	interval    time.Duration
	itemTimeout time.Duration
	pageSize    int
	now         func() time.Time
	running     atomic.Bool // 单飞：上一趟没跑完就跳过本次 tick
}

func NewSweeper(db *gorm.DB, postRepo repository.PostRepository, msgRepo repository.MessageRepository, engine *decay.Engine, refresher *ScoreRefresher, events EventPublisher, interval, itemTimeout time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if itemTimeout <= 0 {
		itemTimeout = 5 * time.Second
	}
	if events == nil {
		events = NewNoopPublisher()
	}
	return &Sweeper{
		db:          db,
		postRepo:    postRepo,
		msgRepo:     msgRepo,
		engine:      engine,
		refresher:   refresher,
		events:      events,
		interval:    interval,
		itemTimeout: itemTimeout,
		pageSize:    500,
		now:         time.Now,
	}
}

// SetNow 注入时钟，测试用
func (s *Sweeper) SetNow(now func() time.Time) { s.now = now }

// Start 启动定时清扫；返回停止函数
func (s *Sweeper) Start() func(context.Context) error {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.RunOnce(context.Background()); err != nil {
					// 整趟失败只记日志，下一个 tick 照常跑
					logger.Error("sweep pass failed", zap.Error(err))
				}
			}
		}
	}()
	return func(ctx context.Context) error {
		close(stop)
		select {
		case <-done:
		case <-ctx.Done():
		}
		return nil
	}
}

// RunOnce 跑一趟清扫，返回删除条数。可由定时器或管理接口触发
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warn("sweep already in progress, skip")
		return 0, nil
	}
	defer s.running.Store(false)

	started := s.now()
	deleted := 0
	offset := 0
	for {
		page, err := s.postRepo.ListSweepable(ctx, offset, s.pageSize)
		if err != nil {
			return deleted, err
		}
		if len(page) == 0 {
			break
		}
		survivors := 0
		for _, post := range page {
			if !s.engine.Expired(post, s.now()) {
				survivors++
				continue
			}
			if s.sweepOne(ctx, post) {
				deleted++
			} else {
				survivors++
			}
		}
		if len(page) < s.pageSize {
			break
		}
		// 删掉的行不再占位，offset 只跳过幸存者
		offset += survivors
	}

	if purged, err := s.msgRepo.DeleteExpired(ctx, s.now()); err != nil {
		logger.Warn("expired message purge failed", zap.Error(err))
	} else if purged > 0 {
		logger.Info("expired messages purged", zap.Int64("count", purged))
	}

	if deleted > 0 {
		logger.Info("sweep pass done",
			zap.Int("deleted", deleted),
			zap.Duration("took", s.now().Sub(started)))
	}
	return deleted, nil
}

// sweepOne 带单条超时地删一条，失败记日志继续。返回是否删成
func (s *Sweeper) sweepOne(ctx context.Context, post *model.Post) bool {
	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	now := s.now()
	ok, err := purgePost(itemCtx, s.db, post, now, true)
	if err != nil {
		logger.Warn("sweep item failed", zap.String("post", post.ID), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if s.refresher != nil {
		s.refresher.Enqueue(post.AuthorID)
	}
	ev := ExpiredEvent{PostID: post.ID, OwnerID: post.AuthorID, LifetimeSeconds: now.Sub(post.CreatedAt).Seconds()}
	if err := s.events.Publish(itemCtx, TopicContentExpired, ev); err != nil {
		// 发布即忘，实时层丢通知不算清扫失败
		logger.Warn("expired event publish failed", zap.String("post", post.ID), zap.Error(err))
	}
	return true
}
