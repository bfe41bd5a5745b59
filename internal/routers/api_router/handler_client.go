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

// ClientHandler 客户端管理 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type ClientHandler struct {
	*Handler
}

// NewClientHandler 创建 ClientHandler 实例
func NewClientHandler(a *app.App) *ClientHandler {
	return &ClientHandler{
		Handler: NewHandler(a),
	}
}

// Create 注册客户端并生成 API Key
// Key 仅在响应中出现一次，之后无法再获取
func (h *ClientHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ClientCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClientHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.ClientService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "ClientHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessCreate.WithData(result))
}

// Get 获取客户端详情，不含 API Key
func (h *ClientHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClientHandler.Get.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.ClientService.Get(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "ClientHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// List 分页获取客户端列表
func (h *ClientHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ClientListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClientHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	if params.Page <= 0 {
		params.Page = pkgapp.GetPage(c)
	}
	if params.PageSize <= 0 {
		params.PageSize = pkgapp.GetPageSize(c)
	}

	ctx := c.Request.Context()

	list, total, err := h.App.ClientService.List(ctx, params)
	if err != nil {
		h.logError(ctx, "ClientHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// Update 更新客户端描述、地址、启用状态和元数据
func (h *ClientHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &struct {
		dto.IDRequest
		dto.ClientUpdateRequest
	}{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClientHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.ClientService.Update(ctx, params.ID, &params.ClientUpdateRequest)
	if err != nil {
		h.logError(ctx, "ClientHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessUpdate.WithData(result))
}

// RotateKey 轮换客户端 API Key
// 旧 Key 立即失效，新 Key 仅此一次返回
func (h *ClientHandler) RotateKey(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClientHandler.RotateKey.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.ClientService.RotateKey(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "ClientHandler.RotateKey", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessUpdate.WithData(result))
}

// Delete 删除客户端
func (h *ClientHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClientHandler.Delete.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.ClientService.Delete(ctx, params.ID); err != nil {
		h.logError(ctx, "ClientHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessDelete)
}

// SyncHistory 分页获取指定客户端的同步历史
func (h *ClientHandler) SyncHistory(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &struct {
		dto.IDRequest
		dto.SyncHistoryListRequest
	}{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClientHandler.SyncHistory.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	if params.Page <= 0 {
		params.Page = pkgapp.GetPage(c)
	}
	if params.PageSize <= 0 {
		params.PageSize = pkgapp.GetPageSize(c)
	}

	ctx := c.Request.Context()

	list, total, err := h.App.SyncService.History(ctx, params.ID, params.Page, params.PageSize)
	if err != nil {
		h.logError(ctx, "ClientHandler.SyncHistory", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// Stale 获取长时间未同步的启用客户端
// 纯读取，不修改任何客户端状态
func (h *ClientHandler) Stale(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	list, err := h.App.ClientService.StaleClients(ctx)
	if err != nil {
		h.logError(ctx, "ClientHandler.Stale", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(list))
}

// Offline 获取长时间无心跳的启用客户端
// 纯读取，不修改任何客户端状态
func (h *ClientHandler) Offline(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	list, err := h.App.ClientService.OfflineClients(ctx)
	if err != nil {
		h.logError(ctx, "ClientHandler.Offline", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(list))
}

// logError 记录错误日志，包含 Trace ID
func (h *ClientHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
