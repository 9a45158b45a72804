// Package config 从环境变量加载服务配置。
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config 服务配置
type Config struct {
	// HTTP服务
	Port         string   `env:"SERVER_PORT" envDefault:"8090"`
	AllowOrigins []string `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	// 会话限制
	MaxParticipants  int `env:"MAX_PARTICIPANTS" envDefault:"100"`
	MaxWSConnections int `env:"MAX_WS_CONNECTIONS" envDefault:"10000"`

	// 限流
	RateLimitEnabled bool `env:"ENABLE_RATE_LIMIT" envDefault:"false"`
	GlobalRateLimit  int  `env:"GLOBAL_RATE_LIMIT" envDefault:"100"`
	UserRateLimit    int  `env:"USER_RATE_LIMIT" envDefault:"10"`

	// 配置了REDIS_ADDR时限流使用Redis令牌桶，否则使用本地令牌桶
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// 日志级别: debug, info, warn, error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load 解析环境变量
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
