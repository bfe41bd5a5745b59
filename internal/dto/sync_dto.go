// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "github.com/br10net/blocklist-sync-service/pkg/timex"

// SyncCompleteRequest 同步完成上报请求
type SyncCompleteRequest struct {
	SyncID          int64    `json:"syncId" form:"syncId" binding:"required" example:"1"`
	Status          string   `json:"status" form:"status" binding:"required,oneof=success failed partial" example:"success"`
	DomainsApplied  int64    `json:"domainsApplied" form:"domainsApplied" binding:"min=0" example:"120"`
	Message         string   `json:"message" form:"message" example:"applied without errors"`
	ErrorDetails    string   `json:"errorDetails" form:"errorDetails"`
	DurationSeconds *float64 `json:"durationSeconds" form:"durationSeconds" binding:"omitempty,min=0" example:"1.5"` // 客户端侧实际耗时
}

// SyncHistoryListRequest 同步历史列表请求
type SyncHistoryListRequest struct {
	Page     int `json:"page" form:"page" example:"1"`
	PageSize int `json:"pageSize" form:"pageSize" example:"20"`
}

// SyncDTO 同步记录 DTO
type SyncDTO struct {
	ID              int64       `json:"id"`              // 记录ID
	ClientID        int64       `json:"clientId"`        // 客户端ID
	Status          string      `json:"status"`          // 状态 (pending, success, failed, partial)
	DomainsSent     int64       `json:"domainsSent"`     // 下发数量
	DomainsApplied  int64       `json:"domainsApplied"`  // 生效数量
	Message         string      `json:"message"`         // 结果说明
	ErrorDetails    string      `json:"errorDetails"`    // 错误详情
	DurationSeconds float64     `json:"durationSeconds"` // 耗时（秒）
	StartedAt       timex.Time  `json:"startedAt"`       // 开始时间
	CompletedAt     *timex.Time `json:"completedAt"`     // 完成时间
}

// PushResultDTO 单客户端推送结果 DTO
type PushResultDTO struct {
	ClientID  int64  `json:"clientId"`  // 客户端ID
	Client    string `json:"client"`    // 客户端名称
	Outcome   string `json:"outcome"`   // 结果 (success, failed, skipped)
	SyncID    int64  `json:"syncId"`    // 关联的同步记录ID
	Applied   int64  `json:"applied"`   // 客户端生效数量
	Detail    string `json:"detail"`    // 失败或跳过原因
	RequestID string `json:"requestId"` // 推送请求关联ID
}

// PushAllResultDTO 全量推送结果 DTO
type PushAllResultDTO struct {
	Total   int              `json:"total"`   // 客户端总数
	Success int              `json:"success"` // 成功数量
	Failed  int              `json:"failed"`  // 失败数量
	Skipped int              `json:"skipped"` // 跳过数量
	Details []*PushResultDTO `json:"details"` // 各客户端明细
}

// ClientHealthDTO 客户端健康检查 DTO
type ClientHealthDTO struct {
	ClientID  int64  `json:"clientId"`  // 客户端ID
	Client    string `json:"client"`    // 客户端名称
	Healthy   bool   `json:"healthy"`   // 是否健康
	Status    string `json:"status"`    // 探测结果 (online, timeout, error)
	Detail    string `json:"detail"`    // 状态说明
	LatencyMs int64  `json:"latencyMs"` // 探测耗时（毫秒）
}

// GeneralStatsDTO 总体统计 DTO
type GeneralStatsDTO struct {
	TotalDomains    int64            `json:"totalDomains"`    // 域名总数
	ActiveDomains   int64            `json:"activeDomains"`   // 启用域名数量
	DomainsBySource map[string]int64 `json:"domainsBySource"` // 按来源统计
	TotalClients    int64            `json:"totalClients"`    // 客户端总数
	ClientsByStatus map[string]int64 `json:"clientsByStatus"` // 按状态统计客户端
	SyncsByStatus   map[string]int64 `json:"syncsByStatus"`   // 按状态统计同步
	RecentSyncs     []*SyncDTO       `json:"recentSyncs"`     // 最近同步记录
	GeneratedAt     timex.Time       `json:"generatedAt"`     // 生成时间
}
