package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Decay    DecayConfig    `mapstructure:"decay"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Score    ScoreConfig    `mapstructure:"score"`
	Message  MessageConfig  `mapstructure:"message"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Trace    TraceConfig    `mapstructure:"trace"`
}

type ServerConfig struct {
	Addr        string  `mapstructure:"addr"`
	Mode        string  `mapstructure:"mode"` // debug / release
	RateLimit   float64 `mapstructure:"rate_limit"`
	RateBurst   int     `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite / postgres
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// DecayConfig 衰减算法常量（秒）
type DecayConfig struct {
	BaseSeconds       float64         `mapstructure:"base_seconds"`
	BronzeBonus       float64         `mapstructure:"bronze_bonus"`
	SilverBonus       float64         `mapstructure:"silver_bonus"`
	PerLikeSeconds    float64         `mapstructure:"per_like_seconds"`
	PerCommentSeconds float64         `mapstructure:"per_comment_seconds"`
	PerDislikeSeconds float64         `mapstructure:"per_dislike_seconds"`
	Tiers             []TierThreshold `mapstructure:"tiers"`
}

// TierThreshold 按 likes 阈值升级（按阈值升序排列）
type TierThreshold struct {
	Tier  string `mapstructure:"tier"`
	Likes int64  `mapstructure:"likes"`
}

type SweepConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	ItemTimeout time.Duration `mapstructure:"item_timeout"`
}

type ScoreConfig struct {
	QueueSize  int     `mapstructure:"queue_size"`
	Workers    int     `mapstructure:"workers"`
	CapSeconds float64 `mapstructure:"cap_seconds"`
}

type MessageConfig struct {
	MinLifetimeSeconds float64 `mapstructure:"min_lifetime_seconds"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TraceConfig struct {
	Endpoint string `mapstructure:"endpoint"` // otlp http endpoint，留空则不启用
}

// Load 读取 config.yaml 并允许 VANISH_ 前缀环境变量覆盖
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("VANISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选，缺省时全部走默认值/环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Decay.Tiers) == 0 {
		cfg.Decay.Tiers = DefaultTiers()
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "vanish.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("decay.base_seconds", 86400)
	v.SetDefault("decay.bronze_bonus", 30*86400)
	v.SetDefault("decay.silver_bonus", 365*86400)
	v.SetDefault("decay.per_like_seconds", 86.4)
	v.SetDefault("decay.per_comment_seconds", 172.8)
	v.SetDefault("decay.per_dislike_seconds", 43.2)
	v.SetDefault("sweep.interval", 5*time.Minute)
	v.SetDefault("sweep.item_timeout", 5*time.Second)
	v.SetDefault("score.queue_size", 10000)
	v.SetDefault("score.workers", 4)
	v.SetDefault("score.cap_seconds", 10*365*86400)
	v.SetDefault("message.min_lifetime_seconds", 86400)
}

// DefaultTiers 默认升级阈值
func DefaultTiers() []TierThreshold {
	return []TierThreshold{
		{Tier: "bronze", Likes: 10},
		{Tier: "silver", Likes: 50},
		{Tier: "gold", Likes: 200},
	}
}
