package api_router

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/app"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	pkgapp "github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/code"
)

// AuthHandler 管理端认证 API 路由处理器
type AuthHandler struct {
	*Handler
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(a *app.App) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(a),
	}
}

// Token 校验管理员凭据并签发 JWT Token
// 配置中未设置管理员密码时拒绝签发
func (h *AuthHandler) Token(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.AuthTokenRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("AuthHandler.Token.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	sec := h.App.Config().Security
	if sec.AdminPassword == "" {
		response.ToResponse(code.ErrorUserAuthFail.WithDetails("admin password is not configured"))
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(params.Username), []byte(sec.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(params.Password), []byte(sec.AdminPassword)) == 1
	if !userOK || !passOK {
		h.App.Logger().Warn("AuthHandler.Token auth failed",
			zap.String("username", params.Username),
			zap.String("ip", pkgapp.GetRequestIP(c)))
		response.ToResponse(code.ErrorUserAuthFail)
		return
	}

	token, err := h.App.TokenManager.Generate(params.Username, pkgapp.GetRequestIP(c))
	if err != nil {
		h.App.Logger().Error("AuthHandler.Token.Generate err", zap.Error(err))
		response.ToResponse(code.ErrorServerInternal.WithDetails(err.Error()))
		return
	}

	response.ToResponse(code.Success.WithData(dto.AuthTokenDTO{Token: token}))
}
