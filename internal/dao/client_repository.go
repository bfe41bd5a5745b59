package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/model"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
)

// clientRepository 实现 domain.ClientRepository 接口
type clientRepository struct {
	dao *Dao
}

// NewClientRepository 创建 ClientRepository 实例
func NewClientRepository(dao *Dao) domain.ClientRepository {
	return &clientRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *clientRepository) toDomain(m *model.DNSClient) *domain.DNSClient {
	if m == nil {
		return nil
	}
	c := &domain.DNSClient{
		ID:           m.ID,
		Name:         m.Name,
		APIKey:       m.APIKey,
		IPAddress:    m.IPAddress,
		Description:  m.Description,
		Status:       domain.ClientStatus(m.Status),
		IsActive:     m.IsActive,
		DomainsCount: m.DomainsCount,
		Metadata:     decodeJSON(m.Metadata),
		CreatedAt:    time.Time(m.CreatedAt),
		UpdatedAt:    time.Time(m.UpdatedAt),
	}
	if m.LastSync != nil {
		t := time.Time(*m.LastSync)
		c.LastSync = &t
	}
	if m.LastHeartbeat != nil {
		t := time.Time(*m.LastHeartbeat)
		c.LastHeartbeat = &t
	}
	return c
}

// toModel 将领域模型转换为数据库模型
func (r *clientRepository) toModel(c *domain.DNSClient) *model.DNSClient {
	if c == nil {
		return nil
	}
	m := &model.DNSClient{
		ID:           c.ID,
		Name:         c.Name,
		APIKey:       c.APIKey,
		IPAddress:    c.IPAddress,
		Description:  c.Description,
		Status:       string(c.Status),
		IsActive:     c.IsActive,
		DomainsCount: c.DomainsCount,
		Metadata:     encodeJSON(c.Metadata),
		CreatedAt:    timex.Time(c.CreatedAt),
		UpdatedAt:    timex.Time(c.UpdatedAt),
	}
	if c.LastSync != nil {
		t := timex.Time(*c.LastSync)
		m.LastSync = &t
	}
	if c.LastHeartbeat != nil {
		t := timex.Time(*c.LastHeartbeat)
		m.LastHeartbeat = &t
	}
	return m
}

// GetByID 根据ID获取客户端
func (r *clientRepository) GetByID(ctx context.Context, id int64) (*domain.DNSClient, error) {
	var m model.DNSClient
	err := r.dao.Db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByAPIKey 根据 API Key 获取客户端
func (r *clientRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.DNSClient, error) {
	var m model.DNSClient
	err := r.dao.Db.WithContext(ctx).Where("api_key = ?", apiKey).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByName 根据名称获取客户端
func (r *clientRepository) GetByName(ctx context.Context, name string) (*domain.DNSClient, error) {
	var m model.DNSClient
	err := r.dao.Db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建客户端
func (r *clientRepository) Create(ctx context.Context, c *domain.DNSClient) (*domain.DNSClient, error) {
	m := r.toModel(c)
	m.ID = 0
	m.CreatedAt = timex.Now()
	m.UpdatedAt = timex.Now()

	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新客户端
func (r *clientRepository) Update(ctx context.Context, c *domain.DNSClient) (*domain.DNSClient, error) {
	m := r.toModel(c)
	m.UpdatedAt = timex.Now()

	if err := r.dao.Db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateAPIKey 更新客户端 API Key
func (r *clientRepository) UpdateAPIKey(ctx context.Context, id int64, apiKey string) error {
	return r.dao.Db.WithContext(ctx).
		Model(&model.DNSClient{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"api_key":    apiKey,
			"updated_at": timex.Now(),
		}).Error
}

// UpdateHeartbeat 更新心跳时间和状态
func (r *clientRepository) UpdateHeartbeat(ctx context.Context, id int64, status domain.ClientStatus, at time.Time) error {
	return r.dao.Db.WithContext(ctx).
		Model(&model.DNSClient{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_heartbeat": timex.Time(at),
			"status":         string(status),
			"updated_at":     timex.Now(),
		}).Error
}

// UpdateStatus 更新客户端状态
func (r *clientRepository) UpdateStatus(ctx context.Context, id int64, status domain.ClientStatus) error {
	return r.dao.Db.WithContext(ctx).
		Model(&model.DNSClient{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": timex.Now(),
		}).Error
}

// UpdateSyncResult 更新最近同步时间和下发数量
func (r *clientRepository) UpdateSyncResult(ctx context.Context, id int64, at time.Time, domainsCount int64) error {
	return r.dao.Db.WithContext(ctx).
		Model(&model.DNSClient{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_sync":     timex.Time(at),
			"domains_count": domainsCount,
			"updated_at":    timex.Now(),
		}).Error
}

// Delete 删除客户端
func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.Db.WithContext(ctx).Delete(&model.DNSClient{}, id).Error
}

// listQuery 构建列表查询条件
func (r *clientRepository) listQuery(ctx context.Context, q domain.ClientQuery) *gorm.DB {
	tx := r.dao.Db.WithContext(ctx).Model(&model.DNSClient{})
	if q.Keyword != "" {
		tx = tx.Where("name LIKE ?", "%"+q.Keyword+"%")
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", string(q.Status))
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	return tx
}

// List 分页获取客户端列表
func (r *clientRepository) List(ctx context.Context, q domain.ClientQuery) ([]*domain.DNSClient, error) {
	var modelList []*model.DNSClient
	err := r.listQuery(ctx, q).
		Order("created_at DESC").
		Offset(pageOffset(q.Page, q.PageSize)).
		Limit(q.PageSize).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.DNSClient
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// ListCount 获取客户端数量
func (r *clientRepository) ListCount(ctx context.Context, q domain.ClientQuery) (int64, error) {
	var count int64
	err := r.listQuery(ctx, q).Count(&count).Error
	return count, err
}

// ListEnabled 获取全部启用的客户端
func (r *clientRepository) ListEnabled(ctx context.Context) ([]*domain.DNSClient, error) {
	var modelList []*model.DNSClient
	err := r.dao.Db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.DNSClient
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// ListSyncedBefore 获取最近同步早于指定时间的启用客户端，包含从未同步的
func (r *clientRepository) ListSyncedBefore(ctx context.Context, t time.Time) ([]*domain.DNSClient, error) {
	var modelList []*model.DNSClient
	err := r.dao.Db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("last_sync IS NULL OR last_sync < ?", timex.Time(t)).
		Order("name ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.DNSClient
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// ListHeartbeatBefore 获取心跳早于指定时间的启用客户端，包含从未心跳的
func (r *clientRepository) ListHeartbeatBefore(ctx context.Context, t time.Time) ([]*domain.DNSClient, error) {
	var modelList []*model.DNSClient
	err := r.dao.Db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("last_heartbeat IS NULL OR last_heartbeat < ?", timex.Time(t)).
		Order("name ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.DNSClient
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// CountByStatus 按状态统计客户端数量
func (r *clientRepository) CountByStatus(ctx context.Context) (map[domain.ClientStatus]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.dao.Db.WithContext(ctx).
		Model(&model.DNSClient{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.ClientStatus]int64, len(rows))
	for _, v := range rows {
		result[domain.ClientStatus(v.Status)] = v.Count
	}
	return result, nil
}

// 确保 clientRepository 实现了 domain.ClientRepository 接口
var _ domain.ClientRepository = (*clientRepository)(nil)
