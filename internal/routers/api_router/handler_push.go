package api_router

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/app"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/internal/middleware"
	pkgapp "github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	apperrors "github.com/br10net/blocklist-sync-service/pkg/errors"
)

// PushHandler 推送与统计 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type PushHandler struct {
	*Handler
}

// NewPushHandler 创建 PushHandler 实例
func NewPushHandler(a *app.App) *PushHandler {
	return &PushHandler{
		Handler: NewHandler(a),
	}
}

// PushClient 向单个客户端推送当前启用域名
func (h *PushHandler) PushClient(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("PushHandler.PushClient.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.SyncService.PushToClient(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "PushHandler.PushClient", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// PushAll 并发向全部启用客户端推送
// 单个客户端失败不影响其余客户端
func (h *PushHandler) PushAll(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	result, err := h.App.SyncService.PushToAll(ctx)
	if err != nil {
		h.logError(ctx, "PushHandler.PushAll", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// Health 探测客户端健康接口
// 探测失败体现在结果字段中，不作为错误返回
func (h *PushHandler) Health(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("PushHandler.Health.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.SyncService.CheckHealth(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "PushHandler.Health", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// RecentSyncs 获取最近的同步记录
func (h *PushHandler) RecentSyncs(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	limit := h.App.Config().Monitor.RecentSyncs
	list, err := h.App.SyncService.Recent(ctx, limit)
	if err != nil {
		h.logError(ctx, "PushHandler.RecentSyncs", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(list))
}

// Stats 获取总体统计视图
func (h *PushHandler) Stats(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	result, err := h.App.StatsService.General(ctx)
	if err != nil {
		h.logError(ctx, "PushHandler.Stats", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// logError 记录错误日志，包含 Trace ID
func (h *PushHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
