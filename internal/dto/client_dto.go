// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "github.com/br10net/blocklist-sync-service/pkg/timex"

// ClientCreateRequest 创建客户端请求
type ClientCreateRequest struct {
	Name        string         `json:"name" form:"name" binding:"required,min=2,max=64" example:"resolver-eu-1"`
	Description string         `json:"description" form:"description" example:"edge resolver in eu-west"`
	IPAddress   string         `json:"ipAddress" form:"ipAddress" binding:"omitempty,ip" example:"10.20.0.53"`
	Metadata    map[string]any `json:"metadata" form:"metadata"`
}

// ClientUpdateRequest 更新客户端请求
type ClientUpdateRequest struct {
	Description *string        `json:"description" form:"description"`
	IPAddress   *string        `json:"ipAddress" form:"ipAddress" binding:"omitempty,ip"`
	IsActive    *bool          `json:"isActive" form:"isActive"`
	Metadata    map[string]any `json:"metadata" form:"metadata"`
}

// ClientListRequest 客户端列表请求
type ClientListRequest struct {
	Keyword  string `json:"keyword" form:"keyword" example:"resolver"`
	Status   string `json:"status" form:"status" binding:"omitempty,oneof=offline online syncing error"`
	IsActive *bool  `json:"isActive" form:"isActive"`
	Page     int    `json:"page" form:"page" example:"1"`
	PageSize int    `json:"pageSize" form:"pageSize" example:"20"`
}

// ClientDTO 客户端 DTO，不包含 API Key
type ClientDTO struct {
	ID            int64          `json:"id"`            // 客户端ID
	Name          string         `json:"name"`          // 名称
	IPAddress     string         `json:"ipAddress"`     // IP 地址
	Description   string         `json:"description"`   // 描述
	Status        string         `json:"status"`        // 状态 (offline, online, syncing, error)
	IsActive      bool           `json:"isActive"`      // 是否启用
	DomainsCount  int64          `json:"domainsCount"`  // 最近下发域名数量
	LastSync      *timex.Time    `json:"lastSync"`      // 最近同步时间
	LastHeartbeat *timex.Time    `json:"lastHeartbeat"` // 最近心跳时间
	Metadata      map[string]any `json:"metadata"`      // 元数据
	CreatedAt     timex.Time     `json:"createdAt"`     // 创建时间
	UpdatedAt     timex.Time     `json:"updatedAt"`     // 更新时间
}

// ClientWithKeyDTO 携带 API Key 的客户端 DTO，仅创建和轮换时返回
type ClientWithKeyDTO struct {
	ClientDTO
	APIKey string `json:"apiKey"` // API Key，仅此一次返回
}

// ClientStatusDTO 客户端状态 DTO
type ClientStatusDTO struct {
	ID            int64       `json:"id"`            // 客户端ID
	Name          string      `json:"name"`          // 名称
	Status        string      `json:"status"`        // 状态
	DomainsCount  int64       `json:"domainsCount"`  // 最近下发域名数量
	ActiveDomains int64       `json:"activeDomains"` // 服务端当前启用域名数量
	LastSync      *timex.Time `json:"lastSync"`      // 最近同步时间
	LastHeartbeat *timex.Time `json:"lastHeartbeat"` // 最近心跳时间
	InSync        bool        `json:"inSync"`        // 下发数量与服务端是否一致
}

// ClientReportDTO 过期/离线客户端报表 DTO
type ClientReportDTO struct {
	ID            int64       `json:"id"`            // 客户端ID
	Name          string      `json:"name"`          // 名称
	Status        string      `json:"status"`        // 状态
	LastSync      *timex.Time `json:"lastSync"`      // 最近同步时间
	LastHeartbeat *timex.Time `json:"lastHeartbeat"` // 最近心跳时间
}
