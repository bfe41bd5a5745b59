// Package cache 实现基于 Redis 的缓存层
// 所有读写操作在 Redis 不可用时安静降级：读按未命中处理，写按空操作处理
// 调用方不感知缓存故障，数据库始终是事实来源
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config Redis 连接配置
type Config struct {
	// Enabled 是否启用缓存
	Enabled bool `yaml:"enabled" default:"true"`
	// Addr Redis 地址
	Addr string `yaml:"addr" default:"127.0.0.1:6379"`
	// Password Redis 密码
	Password string `yaml:"password"`
	// DB Redis 数据库编号
	DB int `yaml:"db" default:"0"`
	// PoolSize 连接池大小
	PoolSize int `yaml:"pool-size" default:"10"`
	// DialTimeout 连接超时（秒）
	DialTimeout int `yaml:"dial-timeout" default:"2"`
}

// Cache 缓存接口
// Get 返回 false 表示未命中（包括 Redis 故障）
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Available(ctx context.Context) bool
	Close() error
}

// redisCache Redis 实现
type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewClient 根据配置创建 Redis 客户端
// 同一个客户端可以在缓存和限流器之间复用
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
	})
}

// New 创建 Redis 缓存实例
func New(cfg Config, logger *zap.Logger) Cache {
	if !cfg.Enabled {
		return NewNoop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisCache{client: NewClient(cfg), logger: logger}
}

// NewWithClient 使用已有客户端创建缓存实例（测试用）
func NewWithClient(client *redis.Client, logger *zap.Logger) Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisCache{client: client, logger: logger}
}

// Get 读取并反序列化缓存值，未命中或故障返回 false
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("cacheKey", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cache value decode failed", zap.String("cacheKey", key), zap.Error(err))
		return false
	}
	return true
}

// Set 序列化并写入缓存，故障时空操作
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value encode failed", zap.String("cacheKey", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("cacheKey", key), zap.Error(err))
	}
}

// Delete 删除指定键，故障时空操作
func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache delete failed", zap.Strings("cacheKeys", keys), zap.Error(err))
	}
}

// DeleteByPrefix 删除前缀匹配的所有键
// 使用 SCAN 迭代，避免 KEYS 阻塞
func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			c.logger.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Warn("cache delete failed", zap.Strings("cacheKeys", keys), zap.Error(err))
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Available 探测 Redis 可用性
func (c *redisCache) Available(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

// Client 返回底层客户端，供限流器复用连接
func (c *redisCache) Client() *redis.Client {
	return c.client
}

// noopCache 缓存禁用时的空实现
type noopCache struct{}

// NewNoop 创建空缓存实例
func NewNoop() Cache {
	return noopCache{}
}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) bool           { return false }
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {}
func (noopCache) Delete(ctx context.Context, keys ...string)                           {}
func (noopCache) DeleteByPrefix(ctx context.Context, prefix string)                    {}
func (noopCache) Available(ctx context.Context) bool                                   { return false }
func (noopCache) Close() error                                                         { return nil }
