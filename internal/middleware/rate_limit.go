package middleware

import (
	"strconv"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// ClientRateLimiter 基于 Redis 固定窗口的客户端限流中间件（支持依赖注入）
// 标识取认证客户端 ID，未认证时退化为来源 IP；Redis 不可用时放行
func ClientRateLimiter(rl *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		if client, ok := GetClient(c); ok {
			identifier = strconv.FormatInt(client.ID, 10)
		}

		allowed, remaining := rl.Allow(c.Request.Context(), identifier)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
