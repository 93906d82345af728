package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/model"
)

// InitDB 按配置打开数据库连接。
// TranslateError 开启后，唯一键冲突统一映射为 gorm.ErrDuplicatedKey。
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	switch cfg.Database.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Database.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// Migrate 建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.PostBody{},
		&model.Reaction{},
		&model.Comment{},
		&model.LifetimeRecord{},
		&model.Conversation{},
		&model.Participant{},
		&model.Message{},
	)
}
