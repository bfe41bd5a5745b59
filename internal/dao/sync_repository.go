package dao

import (
	"context"
	"time"

	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/model"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
)

// syncRepository 实现 domain.SyncRepository 接口
type syncRepository struct {
	dao *Dao
}

// NewSyncRepository 创建 SyncRepository 实例
func NewSyncRepository(dao *Dao) domain.SyncRepository {
	return &syncRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *syncRepository) toDomain(m *model.SyncHistory) *domain.SyncHistory {
	if m == nil {
		return nil
	}
	s := &domain.SyncHistory{
		ID:              m.ID,
		ClientID:        m.ClientID,
		Status:          domain.SyncStatus(m.Status),
		DomainsSent:     m.DomainsSent,
		DomainsApplied:  m.DomainsApplied,
		Message:         m.Message,
		ErrorDetails:    m.ErrorDetails,
		DurationSeconds: m.DurationSeconds,
		StartedAt:       time.Time(m.StartedAt),
	}
	if m.CompletedAt != nil {
		t := time.Time(*m.CompletedAt)
		s.CompletedAt = &t
	}
	return s
}

// toModel 将领域模型转换为数据库模型
func (r *syncRepository) toModel(s *domain.SyncHistory) *model.SyncHistory {
	if s == nil {
		return nil
	}
	m := &model.SyncHistory{
		ID:              s.ID,
		ClientID:        s.ClientID,
		Status:          string(s.Status),
		DomainsSent:     s.DomainsSent,
		DomainsApplied:  s.DomainsApplied,
		Message:         s.Message,
		ErrorDetails:    s.ErrorDetails,
		DurationSeconds: s.DurationSeconds,
		StartedAt:       timex.Time(s.StartedAt),
	}
	if s.CompletedAt != nil {
		t := timex.Time(*s.CompletedAt)
		m.CompletedAt = &t
	}
	return m
}

// GetByID 根据ID获取同步记录
func (r *syncRepository) GetByID(ctx context.Context, id int64) (*domain.SyncHistory, error) {
	var m model.SyncHistory
	err := r.dao.Db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建同步记录
func (r *syncRepository) Create(ctx context.Context, s *domain.SyncHistory) (*domain.SyncHistory, error) {
	m := r.toModel(s)
	m.ID = 0
	if s.StartedAt.IsZero() {
		m.StartedAt = timex.Now()
	}

	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新同步记录
func (r *syncRepository) Update(ctx context.Context, s *domain.SyncHistory) (*domain.SyncHistory, error) {
	m := r.toModel(s)

	if err := r.dao.Db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// ListByClient 分页获取客户端的同步记录
func (r *syncRepository) ListByClient(ctx context.Context, clientID int64, page, pageSize int) ([]*domain.SyncHistory, error) {
	var modelList []*model.SyncHistory
	err := r.dao.Db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("started_at DESC").
		Offset(pageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.SyncHistory
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// CountByClient 获取客户端的同步记录数量
func (r *syncRepository) CountByClient(ctx context.Context, clientID int64) (int64, error) {
	var count int64
	err := r.dao.Db.WithContext(ctx).
		Model(&model.SyncHistory{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

// ListRecent 获取最近的同步记录
func (r *syncRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncHistory, error) {
	var modelList []*model.SyncHistory
	err := r.dao.Db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.SyncHistory
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// CountByStatus 按状态统计同步记录数量
func (r *syncRepository) CountByStatus(ctx context.Context) (map[domain.SyncStatus]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.dao.Db.WithContext(ctx).
		Model(&model.SyncHistory{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.SyncStatus]int64, len(rows))
	for _, v := range rows {
		result[domain.SyncStatus(v.Status)] = v.Count
	}
	return result, nil
}

// 确保 syncRepository 实现了 domain.SyncRepository 接口
var _ domain.SyncRepository = (*syncRepository)(nil)
