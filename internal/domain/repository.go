// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// DomainQuery 域名列表查询条件
type DomainQuery struct {
	Keyword  string
	Source   DomainSource
	IsActive *bool
	Page     int
	PageSize int
}

// HistoryQuery 历史列表查询条件
type HistoryQuery struct {
	DomainID int64
	Domain   string
	Action   HistoryAction
	Page     int
	PageSize int
}

// ClientQuery 客户端列表查询条件
type ClientQuery struct {
	Keyword  string
	Status   ClientStatus
	IsActive *bool
	Page     int
	PageSize int
}

// DomainRepository 拦截域名仓储接口
type DomainRepository interface {
	// GetByID 根据ID获取域名
	GetByID(ctx context.Context, id int64) (*BlockedDomain, error)

	// GetByName 根据域名获取记录（包含未启用）
	GetByName(ctx context.Context, domain string) (*BlockedDomain, error)

	// Create 创建域名
	Create(ctx context.Context, d *BlockedDomain) (*BlockedDomain, error)

	// Update 更新域名
	Update(ctx context.Context, d *BlockedDomain) (*BlockedDomain, error)

	// BulkCreate 批量创建域名，与唯一索引冲突的跳过
	BulkCreate(ctx context.Context, domains []*BlockedDomain) error

	// Delete 物理删除域名
	Delete(ctx context.Context, id int64) error

	// List 分页获取域名列表
	List(ctx context.Context, q DomainQuery) ([]*BlockedDomain, error)

	// ListCount 获取域名数量
	ListCount(ctx context.Context, q DomainQuery) (int64, error)

	// ListExistingNames 返回给定集合中已存在的域名
	ListExistingNames(ctx context.Context, names []string) ([]string, error)

	// ListByNames 根据域名集合获取完整记录
	ListByNames(ctx context.Context, names []string) ([]*BlockedDomain, error)

	// ListActiveNames 获取所有启用域名，按字典序
	ListActiveNames(ctx context.Context) ([]string, error)

	// ListActive 获取所有启用域名完整记录，按字典序
	ListActive(ctx context.Context) ([]*BlockedDomain, error)

	// CountActive 获取启用域名数量
	CountActive(ctx context.Context) (int64, error)

	// CountTotal 获取域名总数
	CountTotal(ctx context.Context) (int64, error)

	// CountBySource 按来源统计域名数量
	CountBySource(ctx context.Context) (map[DomainSource]int64, error)
}

// DomainHistoryRepository 域名历史仓储接口
type DomainHistoryRepository interface {
	// Create 写入一条历史记录
	Create(ctx context.Context, h *DomainHistory) (*DomainHistory, error)

	// CreateBatch 批量写入历史记录
	CreateBatch(ctx context.Context, items []*DomainHistory) error

	// List 分页获取历史列表
	List(ctx context.Context, q HistoryQuery) ([]*DomainHistory, error)

	// ListCount 获取历史数量
	ListCount(ctx context.Context, q HistoryQuery) (int64, error)
}

// ClientRepository 客户端仓储接口
type ClientRepository interface {
	// GetByID 根据ID获取客户端
	GetByID(ctx context.Context, id int64) (*DNSClient, error)

	// GetByAPIKey 根据 API Key 获取客户端
	GetByAPIKey(ctx context.Context, apiKey string) (*DNSClient, error)

	// GetByName 根据名称获取客户端
	GetByName(ctx context.Context, name string) (*DNSClient, error)

	// Create 创建客户端
	Create(ctx context.Context, c *DNSClient) (*DNSClient, error)

	// Update 更新客户端
	Update(ctx context.Context, c *DNSClient) (*DNSClient, error)

	// UpdateAPIKey 更新客户端 API Key
	UpdateAPIKey(ctx context.Context, id int64, apiKey string) error

	// UpdateHeartbeat 更新心跳时间和状态
	UpdateHeartbeat(ctx context.Context, id int64, status ClientStatus, at time.Time) error

	// UpdateStatus 更新客户端状态
	UpdateStatus(ctx context.Context, id int64, status ClientStatus) error

	// UpdateSyncResult 更新最近同步时间和下发数量
	UpdateSyncResult(ctx context.Context, id int64, at time.Time, domainsCount int64) error

	// Delete 删除客户端
	Delete(ctx context.Context, id int64) error

	// List 分页获取客户端列表
	List(ctx context.Context, q ClientQuery) ([]*DNSClient, error)

	// ListCount 获取客户端数量
	ListCount(ctx context.Context, q ClientQuery) (int64, error)

	// ListEnabled 获取全部启用的客户端
	ListEnabled(ctx context.Context) ([]*DNSClient, error)

	// ListSyncedBefore 获取最近同步早于指定时间的启用客户端，包含从未同步的
	ListSyncedBefore(ctx context.Context, t time.Time) ([]*DNSClient, error)

	// ListHeartbeatBefore 获取心跳早于指定时间的启用客户端，包含从未心跳的
	ListHeartbeatBefore(ctx context.Context, t time.Time) ([]*DNSClient, error)

	// CountByStatus 按状态统计客户端数量
	CountByStatus(ctx context.Context) (map[ClientStatus]int64, error)
}

// SyncRepository 同步记录仓储接口
type SyncRepository interface {
	// GetByID 根据ID获取同步记录
	GetByID(ctx context.Context, id int64) (*SyncHistory, error)

	// Create 创建同步记录
	Create(ctx context.Context, s *SyncHistory) (*SyncHistory, error)

	// Update 更新同步记录
	Update(ctx context.Context, s *SyncHistory) (*SyncHistory, error)

	// ListByClient 分页获取客户端的同步记录
	ListByClient(ctx context.Context, clientID int64, page, pageSize int) ([]*SyncHistory, error)

	// CountByClient 获取客户端的同步记录数量
	CountByClient(ctx context.Context, clientID int64) (int64, error)

	// ListRecent 获取最近的同步记录
	ListRecent(ctx context.Context, limit int) ([]*SyncHistory, error)

	// CountByStatus 按状态统计同步记录数量
	CountByStatus(ctx context.Context) (map[SyncStatus]int64, error)
}
