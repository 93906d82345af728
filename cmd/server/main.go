package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/api/handler"
	"github.com/d60-Lab/vanish/internal/api/middleware"
	"github.com/d60-Lab/vanish/internal/cache"
	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/repository"
	"github.com/d60-Lab/vanish/internal/service"
	"github.com/d60-Lab/vanish/pkg/database"
	"github.com/d60-Lab/vanish/pkg/logger"
	"github.com/d60-Lab/vanish/pkg/trace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTrace, err := trace.Init(ctx, "vanish", cfg.Trace.Endpoint)
	if err != nil {
		logger.Warn("trace init failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTrace(ctx) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("db init failed", zap.Error(err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("db migrate failed", zap.Error(err))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// 仓储
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	userRepo := repository.NewUserRepository(db)
	recordRepo := repository.NewLifetimeRecordRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	// 核心引擎
	engine := decay.NewEngine(cfg.Decay)
	classifier := decay.NewClassifier(cfg.Decay.Tiers)
	scoreCache := cache.NewScoreCache(rdb, 5*time.Minute)
	scoreService := service.NewScoreService(postRepo, userRepo, engine, scoreCache, cfg.Score.CapSeconds)
	refresher := service.NewScoreRefresher(scoreService, cfg.Score.QueueSize)
	stopRefresher := refresher.Start(cfg.Score.Workers)

	events := service.NewRedisPublisher(rdb)
	contentService := service.NewContentService(db, postRepo, reactionRepo, engine, refresher)
	reactionService := service.NewReactionService(db, postRepo, classifier, refresher)
	messageService := service.NewMessageService(msgRepo, scoreService, cfg.Message.MinLifetimeSeconds)
	userService := service.NewUserService(userRepo, cfg.Auth)

	sweeper := service.NewSweeper(db, postRepo, msgRepo, engine, refresher, events, cfg.Sweep.Interval, cfg.Sweep.ItemTimeout)
	stopSweeper := sweeper.Start()

	// 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("vanish"))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

	handler.RegisterValidations()
	h := handler.NewHandler(contentService, reactionService, messageService, userService, scoreService, recordRepo, sweeper)
	h.RegisterRoutes(r, cfg.Auth.JWTSecret)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = stopSweeper(shutdownCtx)
	_ = stopRefresher(shutdownCtx)
}
