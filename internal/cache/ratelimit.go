package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig 客户端请求限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool `yaml:"enabled" default:"true"`
	// Limit 窗口内允许的请求数
	Limit int `yaml:"limit" default:"60"`
	// WindowSeconds 窗口时长（秒）
	WindowSeconds int `yaml:"window-seconds" default:"60"`
}

// Window 窗口时长
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// RateLimiter 固定窗口限流器
// 计数器在 Redis 中以 ratelimit:<identifier> 存储
// Redis 故障时放行（fail-open）：限流是保护措施，不是正确性前提
type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
	logger *zap.Logger
}

// NewRateLimiter 创建限流器
// client 为 nil 时限流始终放行
func NewRateLimiter(client *redis.Client, cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{client: client, config: cfg, logger: logger}
}

// Allow 检查 identifier 在当前窗口内是否还有配额
// 返回值 remaining 是本次请求后剩余的配额
func (r *RateLimiter) Allow(ctx context.Context, identifier string) (allowed bool, remaining int) {
	if !r.config.Enabled || r.client == nil {
		return true, r.config.Limit
	}

	key := RateLimitKey(identifier)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Warn("rate limit counter unavailable, allowing request",
			zap.String("identifier", identifier), zap.Error(err))
		return true, r.config.Limit
	}

	// 窗口从首个请求开始计时
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.config.Window()).Err(); err != nil {
			r.logger.Warn("rate limit expire failed", zap.String("identifier", identifier), zap.Error(err))
		}
	}

	remaining = r.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return int(count) <= r.config.Limit, remaining
}
