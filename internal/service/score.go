package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/vanish/internal/cache"
	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/repository"
	"github.com/d60-Lab/vanish/pkg/logger"
)

// ScoreService 用户分数 = 名下存活内容剩余寿命的算术平均（秒）。
// 无内容时为 0；gold 的无限寿命按 cap 封顶计入，避免把均值拉爆。
type ScoreService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	engine   *decay.Engine
	scores   *cache.ScoreCache // 可为 nil
	cap      float64
	now      func() time.Time
}

func NewScoreService(postRepo repository.PostRepository, userRepo repository.UserRepository, engine *decay.Engine, scores *cache.ScoreCache, capSeconds float64) *ScoreService {
	if capSeconds <= 0 {
		capSeconds = 10 * 365 * 86400
	}
	return &ScoreService{
		postRepo: postRepo,
		userRepo: userRepo,
		engine:   engine,
		scores:   scores,
		cap:      capSeconds,
		now:      time.Now,
	}
}

// SetNow 注入时钟，测试用
func (s *ScoreService) SetNow(now func() time.Time) { s.now = now }

// ComputeUserScore 现算均值，不落库
func (s *ScoreService) ComputeUserScore(ctx context.Context, userID string) (float64, error) {
	posts, err := s.postRepo.ListLiveByAuthor(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}
	now := s.now()
	var sum float64
	for _, p := range posts {
		remaining, infinite := s.engine.Remaining(p, now)
		if infinite || remaining > s.cap {
			remaining = s.cap
		}
		sum += remaining
	}
	return sum / float64(len(posts)), nil
}

// Refresh 现算并写回用户资料，同时回填缓存
func (s *ScoreService) Refresh(ctx context.Context, userID string) error {
	score, err := s.ComputeUserScore(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateScore(ctx, userID, score); err != nil {
		return err
	}
	if s.scores != nil {
		if err := s.scores.SetScore(ctx, userID, score); err != nil {
			logger.Warn("score cache refill failed", zap.String("user", userID), zap.Error(err))
		}
	}
	return nil
}

// InvalidateCache 清掉某用户的缓存分数，让下一次读回源落库值
func (s *ScoreService) InvalidateCache(ctx context.Context, userID string) {
	if s.scores != nil {
		if err := s.scores.Invalidate(ctx, userID); err != nil {
			logger.Warn("score cache invalidate failed", zap.String("user", userID), zap.Error(err))
		}
	}
}

// GetScores 批量读分数，优先走缓存，缺失回源落库值
func (s *ScoreService) GetScores(ctx context.Context, userIDs []string) (map[string]float64, error) {
	if s.scores == nil {
		return s.userRepo.GetScores(ctx, userIDs)
	}
	hit, miss, err := s.scores.GetScores(ctx, userIDs)
	if err != nil {
		// 缓存故障退化为直接读库
		logger.Warn("score cache read failed", zap.Error(err))
		return s.userRepo.GetScores(ctx, userIDs)
	}
	if len(miss) > 0 {
		fromDB, err := s.userRepo.GetScores(ctx, miss)
		if err != nil {
			return nil, err
		}
		for id, v := range fromDB {
			hit[id] = v
			_ = s.scores.SetScore(ctx, id, v)
		}
	}
	return hit, nil
}

type refreshJob struct {
	userID string
	enqAt  time.Time
}

// ScoreRefresher 异步分数刷新器：触发事件只入队，失败只记日志，
// 绝不阻塞也绝不回滚触发它的操作
type ScoreRefresher struct {
	svc       *ScoreService
	ch        chan refreshJob
	metricsCh chan time.Duration
}

func NewScoreRefresher(svc *ScoreService, queueSize int) *ScoreRefresher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &ScoreRefresher{svc: svc, ch: make(chan refreshJob, queueSize), metricsCh: make(chan time.Duration, 65536)}
}

func (r *ScoreRefresher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case job := <-r.ch:
					r.process(job)
				case <-stopCh:
					// 收尾：把还排着的队处理完再退
					for {
						select {
						case job := <-r.ch:
							r.process(job)
						default:
							return
						}
					}
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *ScoreRefresher) process(job refreshJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.svc.Refresh(ctx, job.userID); err != nil {
		logger.Warn("score refresh failed", zap.String("user", job.userID), zap.Error(err))
		// 刷新没落地就别让旧缓存值继续被读到
		r.svc.InvalidateCache(ctx, job.userID)
	}
	if !job.enqAt.IsZero() {
		select {
		case r.metricsCh <- time.Since(job.enqAt):
		default:
		}
	}
}

// Enqueue 入队刷新请求；队列满了直接丢弃并告警
func (r *ScoreRefresher) Enqueue(userID string) {
	select {
	case r.ch <- refreshJob{userID: userID, enqAt: time.Now()}:
	default:
		logger.Warn("score refresh queue full, drop", zap.String("user", userID))
	}
}

// Metrics 返回刷新落地耗时的只读通道（每处理一条发送一次 duration）。
func (r *ScoreRefresher) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (r *ScoreRefresher) QueueLen() int { return len(r.ch) }
