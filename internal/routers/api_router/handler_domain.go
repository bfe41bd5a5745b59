package api_router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/app"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/internal/middleware"
	pkgapp "github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	apperrors "github.com/br10net/blocklist-sync-service/pkg/errors"
)

// DomainHandler 拦截域名管理 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type DomainHandler struct {
	*Handler
}

// NewDomainHandler 创建 DomainHandler 实例
func NewDomainHandler(a *app.App) *DomainHandler {
	return &DomainHandler{
		Handler: NewHandler(a),
	}
}

// performedBy 获取当前操作人标识
func performedBy(c *gin.Context) string {
	if admin := middleware.GetAdmin(c); admin != nil && admin.Username != "" {
		return admin.Username
	}
	return "admin"
}

// Add 添加拦截域名
// 已停用的同名记录会被重新启用
func (h *DomainHandler) Add(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DomainAddRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.Add.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.DomainService.Add(ctx, performedBy(c), params)
	if err != nil {
		h.logError(ctx, "DomainHandler.Add", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessCreate.WithData(result))
}

// AddBulk 批量添加拦截域名
// 返回写入/跳过/非法统计
func (h *DomainHandler) AddBulk(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DomainBulkAddRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.AddBulk.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	if max := h.App.Config().App.BulkAddMaxDomains; max > 0 && len(params.Domains) > max {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(
			fmt.Sprintf("domains count %d exceeds limit %d", len(params.Domains), max)))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.DomainService.AddBulk(ctx, performedBy(c), params)
	if err != nil {
		h.logError(ctx, "DomainHandler.AddBulk", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessCreate.WithData(result))
}

// Get 获取域名详情
func (h *DomainHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.Get.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.DomainService.Get(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "DomainHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// List 分页获取域名列表
func (h *DomainHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DomainListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.List.BindAndValid err", zap.Error(errs))
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

	list, total, err := h.App.DomainService.List(ctx, params)
	if err != nil {
		h.logError(ctx, "DomainHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// Count 获取域名数量统计
func (h *DomainHandler) Count(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	result, err := h.App.DomainService.Count(ctx)
	if err != nil {
		h.logError(ctx, "DomainHandler.Count", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// SetActive 启用或停用域名
func (h *DomainHandler) SetActive(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &struct {
		dto.IDRequest
		dto.DomainSetActiveRequest
	}{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.SetActive.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.DomainService.SetActive(ctx, params.ID, *params.IsActive, performedBy(c))
	if err != nil {
		h.logError(ctx, "DomainHandler.SetActive", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessUpdate.WithData(result))
}

// Remove 停用域名（逻辑移除）
func (h *DomainHandler) Remove(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.Remove.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.DomainService.Remove(ctx, params.ID, performedBy(c)); err != nil {
		h.logError(ctx, "DomainHandler.Remove", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessUpdate)
}

// Delete 物理删除域名
func (h *DomainHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.Delete.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.DomainService.Delete(ctx, params.ID, performedBy(c)); err != nil {
		h.logError(ctx, "DomainHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessDelete)
}

// History 分页获取域名变更历史
func (h *DomainHandler) History(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DomainHistoryListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.History.BindAndValid err", zap.Error(errs))
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

	list, total, err := h.App.DomainService.History(ctx, params)
	if err != nil {
		h.logError(ctx, "DomainHandler.History", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// Export 导出启用域名，format 支持 json/txt/rpz
// 响应为原始文件内容，带下载头
func (h *DomainHandler) Export(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DomainExportRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DomainHandler.Export.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	body, contentType, err := h.App.DomainService.Export(ctx, params.Format, params.Metadata)
	if err != nil {
		h.logError(ctx, "DomainHandler.Export", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	format := params.Format
	if format == "" {
		format = "json"
	}
	filename := fmt.Sprintf("blocklist-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

// logError 记录错误日志，包含 Trace ID
func (h *DomainHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
