// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/model"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
)

// domainRepository 实现 domain.DomainRepository 接口
type domainRepository struct {
	dao *Dao
}

// NewDomainRepository 创建 DomainRepository 实例
func NewDomainRepository(dao *Dao) domain.DomainRepository {
	return &domainRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *domainRepository) toDomain(m *model.BlockedDomain) *domain.BlockedDomain {
	if m == nil {
		return nil
	}
	return &domain.BlockedDomain{
		ID:        m.ID,
		Domain:    m.Domain,
		IsActive:  m.IsActive,
		Source:    domain.DomainSource(m.Source),
		SourceRef: m.SourceRef,
		Notes:     m.Notes,
		AddedBy:   m.AddedBy,
		AddedAt:   time.Time(m.AddedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *domainRepository) toModel(d *domain.BlockedDomain) *model.BlockedDomain {
	if d == nil {
		return nil
	}
	return &model.BlockedDomain{
		ID:        d.ID,
		Domain:    d.Domain,
		IsActive:  d.IsActive,
		Source:    string(d.Source),
		SourceRef: d.SourceRef,
		Notes:     d.Notes,
		AddedBy:   d.AddedBy,
		AddedAt:   timex.Time(d.AddedAt),
		UpdatedAt: timex.Time(d.UpdatedAt),
	}
}

// GetByID 根据ID获取域名
func (r *domainRepository) GetByID(ctx context.Context, id int64) (*domain.BlockedDomain, error) {
	var m model.BlockedDomain
	err := r.dao.Db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByName 根据域名获取记录（包含未启用）
func (r *domainRepository) GetByName(ctx context.Context, name string) (*domain.BlockedDomain, error) {
	var m model.BlockedDomain
	err := r.dao.Db.WithContext(ctx).Where("domain = ?", name).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建域名
func (r *domainRepository) Create(ctx context.Context, d *domain.BlockedDomain) (*domain.BlockedDomain, error) {
	m := r.toModel(d)
	m.ID = 0
	m.AddedAt = timex.Now()
	m.UpdatedAt = timex.Now()

	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新域名
func (r *domainRepository) Update(ctx context.Context, d *domain.BlockedDomain) (*domain.BlockedDomain, error) {
	m := r.toModel(d)
	m.UpdatedAt = timex.Now()

	if err := r.dao.Db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// BulkCreate 批量创建域名，与唯一索引冲突的跳过
// 写入行数不可靠（驱动对 DoNothing 的 RowsAffected 口径不一），调用方按集合差自行统计
func (r *domainRepository) BulkCreate(ctx context.Context, domains []*domain.BlockedDomain) error {
	if len(domains) == 0 {
		return nil
	}
	models := make([]*model.BlockedDomain, 0, len(domains))
	now := timex.Now()
	for _, d := range domains {
		m := r.toModel(d)
		m.ID = 0
		m.AddedAt = now
		m.UpdatedAt = now
		models = append(models, m)
	}

	return r.dao.Db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "domain"}},
			DoNothing: true,
		}).
		Create(&models).Error
}

// Delete 物理删除域名
func (r *domainRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.Db.WithContext(ctx).Delete(&model.BlockedDomain{}, id).Error
}

// listQuery 构建列表查询条件
func (r *domainRepository) listQuery(ctx context.Context, q domain.DomainQuery) *gorm.DB {
	tx := r.dao.Db.WithContext(ctx).Model(&model.BlockedDomain{})
	if q.Keyword != "" {
		tx = tx.Where("domain LIKE ?", "%"+q.Keyword+"%")
	}
	if q.Source != "" {
		tx = tx.Where("source = ?", string(q.Source))
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	return tx
}

// List 分页获取域名列表
func (r *domainRepository) List(ctx context.Context, q domain.DomainQuery) ([]*domain.BlockedDomain, error) {
	var modelList []*model.BlockedDomain
	err := r.listQuery(ctx, q).
		Order("added_at DESC").
		Offset(pageOffset(q.Page, q.PageSize)).
		Limit(q.PageSize).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.BlockedDomain
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// ListCount 获取域名数量
func (r *domainRepository) ListCount(ctx context.Context, q domain.DomainQuery) (int64, error) {
	var count int64
	err := r.listQuery(ctx, q).Count(&count).Error
	return count, err
}

// ListExistingNames 返回给定集合中已存在的域名
func (r *domainRepository) ListExistingNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.dao.Db.WithContext(ctx).
		Model(&model.BlockedDomain{}).
		Where("domain IN ?", names).
		Pluck("domain", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// ListByNames 根据域名集合获取完整记录
func (r *domainRepository) ListByNames(ctx context.Context, names []string) ([]*domain.BlockedDomain, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var modelList []*model.BlockedDomain
	err := r.dao.Db.WithContext(ctx).
		Where("domain IN ?", names).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.BlockedDomain
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// ListActiveNames 获取所有启用域名，按字典序
func (r *domainRepository) ListActiveNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.dao.Db.WithContext(ctx).
		Model(&model.BlockedDomain{}).
		Where("is_active = ?", true).
		Order("domain ASC").
		Pluck("domain", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ListActive 获取所有启用域名完整记录，按字典序
func (r *domainRepository) ListActive(ctx context.Context) ([]*domain.BlockedDomain, error) {
	var modelList []*model.BlockedDomain
	err := r.dao.Db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("domain ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.BlockedDomain
	for _, m := range modelList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// CountActive 获取启用域名数量
func (r *domainRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.dao.Db.WithContext(ctx).
		Model(&model.BlockedDomain{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// CountTotal 获取域名总数
func (r *domainRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.dao.Db.WithContext(ctx).
		Model(&model.BlockedDomain{}).
		Count(&count).Error
	return count, err
}

// CountBySource 按来源统计域名数量
func (r *domainRepository) CountBySource(ctx context.Context) (map[domain.DomainSource]int64, error) {
	type row struct {
		Source string
		Count  int64
	}
	var rows []row
	err := r.dao.Db.WithContext(ctx).
		Model(&model.BlockedDomain{}).
		Select("source, COUNT(*) AS count").
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.DomainSource]int64, len(rows))
	for _, v := range rows {
		result[domain.DomainSource(v.Source)] = v.Count
	}
	return result, nil
}

// 确保 domainRepository 实现了 domain.DomainRepository 接口
var _ domain.DomainRepository = (*domainRepository)(nil)
