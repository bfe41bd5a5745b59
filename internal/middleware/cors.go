package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cors 跨域请求中间件
// 预检请求直接返回 204
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, Token, X-API-Key, X-Trace-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-RateLimit-Remaining, X-Trace-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
