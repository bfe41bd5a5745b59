// Package limiter 提供基于令牌桶的接口限流
package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	// Key 从请求中提取限流键
	Key(c *gin.Context) string
	// GetBucket 获取键对应的令牌桶
	GetBucket(key string) (*ratelimit.Bucket, bool)
	// AddBuckets 注册限流规则
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key 路由前缀
	Key string
	// FillInterval 填充间隔
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次填充数量
	Quantum int64
}

// MethodLimiter 以请求路径为键的限流器
type MethodLimiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// NewMethodLimiter 创建路径限流器
func NewMethodLimiter() Face {
	return &MethodLimiter{
		limiterBuckets: map[string]*ratelimit.Bucket{},
	}
}

// Key 取请求路径（去掉查询串）
func (l *MethodLimiter) Key(c *gin.Context) string {
	return c.Request.URL.Path
}

func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	// 前缀匹配，规则 Key 覆盖其子路径
	for ruleKey, bucket := range l.limiterBuckets {
		if len(key) >= len(ruleKey) && key[:len(ruleKey)] == ruleKey {
			return bucket, true
		}
	}
	return nil, false
}

func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	for _, rule := range rules {
		if _, ok := l.limiterBuckets[rule.Key]; !ok {
			l.limiterBuckets[rule.Key] = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
		}
	}
	return l
}
