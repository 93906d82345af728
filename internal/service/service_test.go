package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库一个连接一份数据，锁死单连接
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.PostBody{},
		&model.Reaction{},
		&model.Comment{},
		&model.LifetimeRecord{},
		&model.Conversation{},
		&model.Participant{},
		&model.Message{},
	))
	return db
}

func testDecayCfg() config.DecayConfig {
	return config.DecayConfig{
		BaseSeconds:       86400,
		BronzeBonus:       30 * 86400,
		SilverBonus:       365 * 86400,
		PerLikeSeconds:    86.4,
		PerCommentSeconds: 172.8,
		PerDislikeSeconds: 43.2,
		Tiers:             config.DefaultTiers(),
	}
}

func testEngine() *decay.Engine { return decay.NewEngine(testDecayCfg()) }

func seedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	u := &model.User{ID: id, Username: id, Email: id + "@example.com", Password: "p"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, authorID string, createdAt time.Time) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Tier:      model.TierNone,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(p).Error)
	b := &model.PostBody{ID: uuid.New().String(), PostID: p.ID, Text: "hello", CreatedAt: createdAt}
	require.NoError(t, db.Create(b).Error)
	return p
}

func reloadPost(t *testing.T, db *gorm.DB, postID string) *model.Post {
	t.Helper()
	var p model.Post
	require.NoError(t, db.Where("id = ?", postID).First(&p).Error)
	return &p
}

func drainRefresher(t *testing.T, stop func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
}
