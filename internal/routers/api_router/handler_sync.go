package api_router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/app"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/internal/middleware"
	pkgapp "github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	apperrors "github.com/br10net/blocklist-sync-service/pkg/errors"
)

// SyncHandler 解析器客户端 API 路由处理器
// 所有接口都要求 API Key 认证，客户端由认证中间件注入
type SyncHandler struct {
	*Handler
}

// NewSyncHandler 创建 SyncHandler 实例
func NewSyncHandler(a *app.App) *SyncHandler {
	return &SyncHandler{
		Handler: NewHandler(a),
	}
}

// client 获取认证后的客户端，取不到视为服务内部错误
// 正常情况下认证中间件保证其存在
func (h *SyncHandler) client(c *gin.Context) (*domain.DNSClient, bool) {
	client, ok := middleware.GetClient(c)
	if !ok {
		pkgapp.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails("client missing from context"))
	}
	return client, ok
}

// Ping 客户端连通性检查
// 认证中间件已记录心跳，这里只返回成功
func (h *SyncHandler) Ping(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	response.ToResponse(code.Success)
}

// Domains 拉取当前启用的拦截域名
// format 支持 json/txt/rpz，默认 json
func (h *SyncHandler) Domains(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DomainExportRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("SyncHandler.Domains.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	body, contentType, err := h.App.DomainService.Export(ctx, params.Format, params.Metadata)
	if err != nil {
		h.logError(ctx, "SyncHandler.Domains", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, body)
}

// DomainsCount 获取服务端当前启用域名数量
// 客户端据此判断本地副本是否落后
func (h *SyncHandler) DomainsCount(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	result, err := h.App.DomainService.Count(ctx)
	if err != nil {
		h.logError(ctx, "SyncHandler.DomainsCount", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// SyncStart 开启一次同步
// 创建 pending 记录并将客户端置为 syncing
func (h *SyncHandler) SyncStart(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	client, ok := h.client(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.SyncService.Start(ctx, client)
	if err != nil {
		h.logError(ctx, "SyncHandler.SyncStart", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessCreate.WithData(result))
}

// SyncComplete 上报同步结果
// 仅允许本人上报，且只能从 pending 进入终态
func (h *SyncHandler) SyncComplete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SyncCompleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("SyncHandler.SyncComplete.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	client, ok := h.client(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.SyncService.Complete(ctx, client, params)
	if err != nil {
		h.logError(ctx, "SyncHandler.SyncComplete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessUpdate.WithData(result))
}

// SyncHistory 分页获取本客户端的同步历史
func (h *SyncHandler) SyncHistory(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SyncHistoryListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("SyncHandler.SyncHistory.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	client, ok := h.client(c)
	if !ok {
		return
	}

	if params.Page <= 0 {
		params.Page = pkgapp.GetPage(c)
	}
	if params.PageSize <= 0 {
		params.PageSize = pkgapp.GetPageSize(c)
	}

	ctx := c.Request.Context()

	list, total, err := h.App.SyncService.History(ctx, client.ID, params.Page, params.PageSize)
	if err != nil {
		h.logError(ctx, "SyncHandler.SyncHistory", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// Status 获取本客户端的状态视图
// 包含服务端启用域名数量和是否同步一致
func (h *SyncHandler) Status(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	client, ok := h.client(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.ClientService.Status(ctx, client)
	if err != nil {
		h.logError(ctx, "SyncHandler.Status", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// logError 记录错误日志，包含 Trace ID
func (h *SyncHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
