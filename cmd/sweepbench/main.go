package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/model"
	"github.com/d60-Lab/vanish/internal/repository"
	"github.com/d60-Lab/vanish/internal/service"
	"github.com/d60-Lab/vanish/pkg/database"
)

// 本地基准：测 toggle 吞吐与整趟清扫耗时
func main() {
	db := must(gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true}))
	sqlDB := must2e(db.DB())
	// 内存库各连接互不相通，收紧到单连接
	sqlDB.SetMaxOpenConns(1)
	mustDo(database.Migrate(db))

	POSTS := 20000
	if s := os.Getenv("POSTS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			POSTS = v
		}
	}
	TOGGLES := 5000
	if s := os.Getenv("TOGGLES"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			TOGGLES = v
		}
	}

	cfg := config.DecayConfig{
		BaseSeconds: 86400, BronzeBonus: 30 * 86400, SilverBonus: 365 * 86400,
		PerLikeSeconds: 86.4, PerCommentSeconds: 172.8, PerDislikeSeconds: 43.2,
		Tiers: config.DefaultTiers(),
	}
	engine := decay.NewEngine(cfg)
	classifier := decay.NewClassifier(cfg.Tiers)
	postRepo := repository.NewPostRepository(db)

	// 铺数据：一半已过期，一半还活着
	now := time.Now()
	posts := make([]model.Post, POSTS)
	users := make([]model.User, 100)
	for i := range users {
		uid := fmt.Sprintf("u%03d", i)
		users[i] = model.User{ID: uid, Username: uid, Email: uid + "@example.com", Password: "p"}
	}
	mustDo(db.CreateInBatches(&users, 100).Error)
	for i := 0; i < POSTS; i++ {
		age := time.Duration(rand.Intn(2*86400)) * time.Second
		posts[i] = model.Post{
			ID:        uuid.NewString(),
			AuthorID:  users[i%len(users)].ID,
			Tier:      model.TierNone,
			CreatedAt: now.Add(-age),
			UpdatedAt: now,
		}
	}
	mustDo(db.CreateInBatches(&posts, 500).Error)

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	scoreService := service.NewScoreService(postRepo, userRepo, engine, nil, 0)
	refresher := service.NewScoreRefresher(scoreService, 0)
	stopRefresher := refresher.Start(4)
	reactions := service.NewReactionService(db, postRepo, classifier, refresher)

	// toggle 吞吐
	toggleStart := time.Now()
	lat := make([]time.Duration, 0, TOGGLES)
	for i := 0; i < TOGGLES; i++ {
		p := posts[rand.Intn(len(posts))]
		u := users[rand.Intn(len(users))]
		st := time.Now()
		_, _ = reactions.Toggle(ctx, p.ID, u.ID, model.ReactionLike)
		lat = append(lat, time.Since(st))
	}
	toggleTook := time.Since(toggleStart)

	// 收异步刷分落地耗时
	queueLen := refresher.QueueLen()
	mustDo(stopRefresher(ctx))
	refreshLat := make([]time.Duration, 0, TOGGLES)
drained:
	for {
		select {
		case d := <-refresher.Metrics():
			refreshLat = append(refreshLat, d)
		default:
			break drained
		}
	}

	// 整趟清扫
	sweeper := service.NewSweeper(db, postRepo, repository.NewMessageRepository(db), engine, nil, nil, time.Minute, 5*time.Second)
	sweepStart := time.Now()
	deleted, err := sweeper.RunOnce(ctx)
	mustDo(err)
	sweepTook := time.Since(sweepStart)

	fmt.Printf("POSTS=%d TOGGLES=%d\n", POSTS, TOGGLES)
	fmt.Printf("Toggle: total=%v avg=%v p95=%v p99=%v qps=%.0f\n",
		toggleTook, toggleTook/time.Duration(TOGGLES), pct(lat, 0.95), pct(lat, 0.99),
		float64(TOGGLES)/toggleTook.Seconds())
	if len(refreshLat) > 0 {
		fmt.Printf("Refresh: applied=%d backlog=%d p95=%v p99=%v\n",
			len(refreshLat), queueLen, pct(refreshLat, 0.95), pct(refreshLat, 0.99))
	}
	remaining := must2(postRepo.Count(ctx))
	fmt.Printf("Sweep: deleted=%d remaining=%d took=%v\n", deleted, remaining, sweepTook)
}

func pct(vs []time.Duration, p float64) time.Duration {
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(float64(len(xs)) * p)
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func must(db *gorm.DB, err error) *gorm.DB {
	if err != nil {
		panic(err)
	}
	return db
}

func must2(n int64, err error) int64 {
	if err != nil {
		panic(err)
	}
	return n
}

func must2e(d *sql.DB, err error) *sql.DB {
	if err != nil {
		panic(err)
	}
	return d
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
