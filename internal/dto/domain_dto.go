// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "github.com/br10net/blocklist-sync-service/pkg/timex"

// DomainAddRequest 添加拦截域名请求
type DomainAddRequest struct {
	Domain    string `json:"domain" form:"domain" binding:"required,domainname" example:"ads.example.com"`
	Source    string `json:"source" form:"source" binding:"omitempty,oneof=manual bulk import" example:"manual"`
	SourceRef string `json:"sourceRef" form:"sourceRef" example:"ticket-1024"`
	Notes     string `json:"notes" form:"notes" example:"ad tracker"`
}

// DomainBulkAddRequest 批量添加拦截域名请求
type DomainBulkAddRequest struct {
	Domains   []string `json:"domains" form:"domains" binding:"required,min=1,max=10000"`
	Source    string   `json:"source" form:"source" binding:"omitempty,oneof=manual bulk import" example:"bulk"`
	SourceRef string   `json:"sourceRef" form:"sourceRef" example:"blocklist-2026-08.txt"`
}

// DomainListRequest 域名列表请求
type DomainListRequest struct {
	Keyword  string `json:"keyword" form:"keyword" example:"example"`
	Source   string `json:"source" form:"source" binding:"omitempty,oneof=manual bulk import"`
	IsActive *bool  `json:"isActive" form:"isActive"`
	Page     int    `json:"page" form:"page" example:"1"`
	PageSize int    `json:"pageSize" form:"pageSize" example:"20"`
}

// DomainSetActiveRequest 启用/停用域名请求
type DomainSetActiveRequest struct {
	IsActive *bool `json:"isActive" form:"isActive" binding:"required"`
}

// DomainExportRequest 导出请求
type DomainExportRequest struct {
	Format   string `json:"format" form:"format" binding:"omitempty,oneof=json txt rpz" example:"txt"`
	Metadata bool   `json:"metadata" form:"metadata" example:"false"`
}

// DomainDTO 拦截域名 DTO
type DomainDTO struct {
	ID        int64      `json:"id"`        // 域名ID
	Domain    string     `json:"domain"`    // 域名
	IsActive  bool       `json:"isActive"`  // 是否启用
	Source    string     `json:"source"`    // 来源 (manual, bulk, import)
	SourceRef string     `json:"sourceRef"` // 来源说明
	Notes     string     `json:"notes"`     // 备注
	AddedBy   string     `json:"addedBy"`   // 添加人
	AddedAt   timex.Time `json:"addedAt"`   // 添加时间
	UpdatedAt timex.Time `json:"updatedAt"` // 更新时间
}

// DomainBulkAddDTO 批量添加结果 DTO
type DomainBulkAddDTO struct {
	Submitted  int      `json:"submitted"`  // 提交总数
	Added      int64    `json:"added"`      // 实际写入数量
	Duplicated int64    `json:"duplicated"` // 已存在跳过数量
	Invalid    []string `json:"invalid"`    // 校验失败的域名
}

// DomainCountDTO 域名数量 DTO
type DomainCountDTO struct {
	Total    int64 `json:"total"`    // 总数
	Active   int64 `json:"active"`   // 启用数量
	Inactive int64 `json:"inactive"` // 停用数量
}

// DomainHistoryListRequest 域名历史列表请求
type DomainHistoryListRequest struct {
	DomainID int64  `json:"domainId" form:"domainId" example:"1"`
	Domain   string `json:"domain" form:"domain" example:"ads.example.com"`
	Action   string `json:"action" form:"action" binding:"omitempty,oneof=added removed activated deactivated"`
	Page     int    `json:"page" form:"page" example:"1"`
	PageSize int    `json:"pageSize" form:"pageSize" example:"20"`
}

// DomainHistoryDTO 域名历史 DTO
type DomainHistoryDTO struct {
	ID          int64          `json:"id"`          // 记录ID
	DomainID    int64          `json:"domainId"`    // 域名ID
	Domain      string         `json:"domain"`      // 域名
	Action      string         `json:"action"`      // 操作类型
	OldValue    map[string]any `json:"oldValue"`    // 变更前快照
	NewValue    map[string]any `json:"newValue"`    // 变更后快照
	PerformedBy string         `json:"performedBy"` // 操作人
	PerformedAt timex.Time     `json:"performedAt"` // 操作时间
}
