package middleware

import (
	"strings"

	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/service"
	"github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientKey gin.Context 中存储认证客户端的键
const ClientKey = "client"

// ClientAuthWithService 客户端 API Key 认证中间件（支持依赖注入）
// Key 依次取自 Authorization (Bearer)、X-API-Key 请求头和 api_key 查询参数
// 认证通过的每个请求都会记录一次心跳
func ClientAuthWithService(clients service.ClientService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		apiKey := extractAPIKey(c)
		client, err := clients.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			if e, ok := err.(*code.Code); ok {
				response.ToResponse(e)
			} else {
				response.ToResponse(code.ErrorServerInternal.WithDetails(err.Error()))
			}
			c.Abort()
			return
		}

		if err := clients.Heartbeat(c.Request.Context(), client); err != nil {
			// 心跳失败不阻断请求
			logger.Warn("record heartbeat",
				zap.Int64("clientId", client.ID),
				zap.Error(err))
		}

		c.Set(ClientKey, client)
		c.Next()
	}
}

// extractAPIKey 从请求中提取 API Key
func extractAPIKey(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		if strings.HasPrefix(s, "Bearer ") {
			return strings.TrimPrefix(s, "Bearer ")
		}
		return s
	}
	if s := c.GetHeader("X-API-Key"); s != "" {
		return s
	}
	if s, exist := c.GetQuery("api_key"); exist {
		return s
	}
	return ""
}

// GetClient 从 gin.Context 获取认证客户端
func GetClient(c *gin.Context) (*domain.DNSClient, bool) {
	v, exists := c.Get(ClientKey)
	if !exists {
		return nil, false
	}
	client, ok := v.(*domain.DNSClient)
	return client, ok
}
