package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, nil), mr, client
}

func TestCache_SetGet(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Domains []string `json:"domains"`
		Count   int      `json:"count"`
	}

	c.Set(ctx, KeyActiveDomains, payload{Domains: []string{"ads.example.com"}, Count: 1}, TTLActiveDomains)

	var got payload
	require.True(t, c.Get(ctx, KeyActiveDomains, &got))
	assert.Equal(t, []string{"ads.example.com"}, got.Domains)
	assert.Equal(t, 1, got.Count)
}

func TestCache_GetMiss(t *testing.T) {
	c, _, _ := newTestCache(t)

	var got map[string]int
	assert.False(t, c.Get(context.Background(), "missing:key", &got))
}

func TestCache_DeleteByPrefix(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "domains:active_list", []string{"a.example.com"}, time.Minute)
	c.Set(ctx, "domains:active_list:txt", "a.example.com", time.Minute)
	c.Set(ctx, "stats:general", map[string]int{"total": 1}, time.Minute)

	c.DeleteByPrefix(ctx, PrefixDomains)

	assert.False(t, mr.Exists("domains:active_list"))
	assert.False(t, mr.Exists("domains:active_list:txt"))
	assert.True(t, mr.Exists("stats:general"))
}

func TestCache_FailSoftWhenDown(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	mr.Close()

	// 故障时写是空操作，读按未命中处理，不 panic 不报错
	c.Set(ctx, "k", "v", time.Minute)
	var got string
	assert.False(t, c.Get(ctx, "k", &got))
	c.Delete(ctx, "k")
	c.DeleteByPrefix(ctx, "domains:")
	assert.False(t, c.Available(ctx))
}

func TestRateLimiter_Window(t *testing.T) {
	_, mr, client := newTestCache(t)
	ctx := context.Background()

	rl := NewRateLimiter(client, RateLimitConfig{Enabled: true, Limit: 3, WindowSeconds: 60}, nil)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow(ctx, "client-1")
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, remaining := rl.Allow(ctx, "client-1")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// 其他客户端不受影响
	allowed, _ = rl.Allow(ctx, "client-2")
	assert.True(t, allowed)

	// 窗口过期后配额恢复
	mr.FastForward(61 * time.Second)
	allowed, _ = rl.Allow(ctx, "client-1")
	assert.True(t, allowed)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	_, mr, client := newTestCache(t)

	rl := NewRateLimiter(client, RateLimitConfig{Enabled: true, Limit: 1, WindowSeconds: 60}, nil)
	mr.Close()

	allowed, _ := rl.Allow(context.Background(), "client-1")
	assert.True(t, allowed)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Enabled: false, Limit: 0}, nil)
	allowed, _ := rl.Allow(context.Background(), "client-1")
	assert.True(t, allowed)
}
