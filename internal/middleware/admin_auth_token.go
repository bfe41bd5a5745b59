package middleware

import (
	"github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AdminAuthTokenWithConfig 管理端 Token 认证中间件（使用注入的密钥）
func AdminAuthTokenWithConfig(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		response := app.NewResponse(c)

		if s, exist := c.GetQuery("authorization"); exist {
			token = s
		} else if s, exist := c.GetQuery("Authorization"); exist {
			token = s
		} else if s := c.GetHeader("authorization"); len(s) != 0 {
			token = s
		} else if s := c.GetHeader("Authorization"); len(s) != 0 {
			token = s
		} else if s, exist := c.GetQuery("token"); exist {
			token = s
		} else if s = c.GetHeader("token"); len(s) != 0 {
			token = s
		}

		if token == "" {
			response.ToResponse(code.ErrorNotAdminToken)
			c.Abort()
			return
		}

		if admin, err := app.ParseTokenWithKey(token, secretKey); err != nil {
			response.ToResponse(code.ErrorInvalidAdminToken)
			c.Abort()
			return
		} else {
			c.Set("admin_token", admin)
		}

		c.Next()
	}
}

// GetAdmin 从 gin.Context 获取认证的管理员身份
// 未认证时返回 nil
func GetAdmin(c *gin.Context) *app.AdminEntity {
	if v, exists := c.Get("admin_token"); exists {
		if admin, ok := v.(*app.AdminEntity); ok {
			return admin
		}
	}
	return nil
}
