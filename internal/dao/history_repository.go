package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/model"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
)

// historyRepository 实现 domain.DomainHistoryRepository 接口
type historyRepository struct {
	dao *Dao
}

// NewHistoryRepository 创建 DomainHistoryRepository 实例
func NewHistoryRepository(dao *Dao) domain.DomainHistoryRepository {
	return &historyRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *historyRepository) toDomain(m *model.DomainHistory) *domain.DomainHistory {
	if m == nil {
		return nil
	}
	return &domain.DomainHistory{
		ID:          m.ID,
		DomainID:    m.DomainID,
		Domain:      m.Domain,
		Action:      domain.HistoryAction(m.Action),
		OldValue:    decodeJSON(m.OldValue),
		NewValue:    decodeJSON(m.NewValue),
		PerformedBy: m.PerformedBy,
		PerformedAt: time.Time(m.PerformedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *historyRepository) toModel(h *domain.DomainHistory) *model.DomainHistory {
	if h == nil {
		return nil
	}
	return &model.DomainHistory{
		ID:          h.ID,
		DomainID:    h.DomainID,
		Domain:      h.Domain,
		Action:      string(h.Action),
		OldValue:    encodeJSON(h.OldValue),
		NewValue:    encodeJSON(h.NewValue),
		PerformedBy: h.PerformedBy,
		PerformedAt: timex.Time(h.PerformedAt),
	}
}

// Create 写入一条历史记录
func (r *historyRepository) Create(ctx context.Context, h *domain.DomainHistory) (*domain.DomainHistory, error) {
	m := r.toModel(h)
	m.ID = 0
	if h.PerformedAt.IsZero() {
		m.PerformedAt = timex.Now()
	}

	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// CreateBatch 批量写入历史记录
func (r *historyRepository) CreateBatch(ctx context.Context, items []*domain.DomainHistory) error {
	if len(items) == 0 {
		return nil
	}
	models := make([]*model.DomainHistory, 0, len(items))
	now := timex.Now()
	for _, h := range items {
		m := r.toModel(h)
		m.ID = 0
		if h.PerformedAt.IsZero() {
			m.PerformedAt = now
		}
		models = append(models, m)
	}
	return r.dao.Db.WithContext(ctx).Create(&models).Error
}

// listQuery 构建列表查询条件
func (r *historyRepository) listQuery(ctx context.Context, q domain.HistoryQuery) *gorm.DB {
	tx := r.dao.Db.WithContext(ctx).Model(&model.DomainHistory{})
	if q.DomainID > 0 {
		tx = tx.Where("domain_id = ?", q.DomainID)
	}
	if q.Domain != "" {
		tx = tx.Where("domain = ?", q.Domain)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", string(q.Action))
	}
	return tx
}

// List 分页获取历史列表
func (r *historyRepository) List(ctx context.Context, q domain.HistoryQuery) ([]*domain.DomainHistory, error) {
	var modelList []*model.DomainHistory
	err := r.listQuery(ctx, q).
		Order("performed_at DESC").
		Offset(pageOffset(q.Page, q.PageSize)).
		Limit(q.PageSize).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.DomainHistory
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// ListCount 获取历史数量
func (r *historyRepository) ListCount(ctx context.Context, q domain.HistoryQuery) (int64, error) {
	var count int64
	err := r.listQuery(ctx, q).Count(&count).Error
	return count, err
}

// 确保 historyRepository 实现了 domain.DomainHistoryRepository 接口
var _ domain.DomainHistoryRepository = (*historyRepository)(nil)
