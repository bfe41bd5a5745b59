// Package service 实现业务逻辑层
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
	"github.com/br10net/blocklist-sync-service/pkg/util"
)

// DomainService 定义拦截域名业务服务接口
type DomainService interface {
	// Add 添加域名，已停用的同名记录会被重新启用
	Add(ctx context.Context, performedBy string, params *dto.DomainAddRequest) (*dto.DomainDTO, error)

	// AddBulk 批量添加域名，返回写入/跳过/非法统计
	AddBulk(ctx context.Context, performedBy string, params *dto.DomainBulkAddRequest) (*dto.DomainBulkAddDTO, error)

	// Get 根据 ID 获取域名
	Get(ctx context.Context, id int64) (*dto.DomainDTO, error)

	// SetActive 启用或停用域名
	SetActive(ctx context.Context, id int64, active bool, performedBy string) (*dto.DomainDTO, error)

	// Remove 停用域名并记录 removed 历史
	Remove(ctx context.Context, id int64, performedBy string) error

	// Delete 物理删除域名，先落历史再删除
	Delete(ctx context.Context, id int64, performedBy string) error

	// List 分页获取域名列表
	List(ctx context.Context, params *dto.DomainListRequest) ([]*dto.DomainDTO, int64, error)

	// Count 获取域名数量统计
	Count(ctx context.Context) (*dto.DomainCountDTO, error)

	// ActiveList 获取启用域名列表，缓存直读并用 Singleflight 合并回源
	ActiveList(ctx context.Context) ([]string, error)

	// Export 导出启用域名，format 支持 json/txt/rpz
	Export(ctx context.Context, format string, withMetadata bool) ([]byte, string, error)

	// History 分页获取域名变更历史
	History(ctx context.Context, params *dto.DomainHistoryListRequest) ([]*dto.DomainHistoryDTO, int64, error)
}

// domainService 实现 DomainService 接口
type domainService struct {
	repo    domain.DomainRepository
	history domain.DomainHistoryRepository
	cache   cache.Cache
	sf      *singleflight.Group
	logger  *zap.Logger
}

// NewDomainService 创建 DomainService 实例
func NewDomainService(repo domain.DomainRepository, history domain.DomainHistoryRepository, c cache.Cache, logger *zap.Logger) DomainService {
	return &domainService{
		repo:    repo,
		history: history,
		cache:   c,
		sf:      &singleflight.Group{},
		logger:  logger,
	}
}

// toDTO 将领域模型转换为 DTO
func (s *domainService) toDTO(d *domain.BlockedDomain) *dto.DomainDTO {
	if d == nil {
		return nil
	}
	return &dto.DomainDTO{
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

// invalidate 清理域名和统计相关缓存
func (s *domainService) invalidate(ctx context.Context) {
	s.cache.DeleteByPrefix(ctx, cache.PrefixDomains)
	s.cache.DeleteByPrefix(ctx, cache.PrefixStats)
}

// Add 添加域名，已停用的同名记录会被重新启用
func (s *domainService) Add(ctx context.Context, performedBy string, params *dto.DomainAddRequest) (*dto.DomainDTO, error) {
	name := util.NormalizeDomain(params.Domain)
	if !util.IsValidDomain(name) {
		return nil, code.ErrorDomainInvalid.WithDetails(params.Domain)
	}

	source := domain.DomainSource(params.Source)
	if source == "" {
		source = domain.DomainSourceManual
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err == nil {
		if existing.IsActive {
			return nil, code.ErrorDomainExist.WithDetails(name).WithData(s.toDTO(existing))
		}

		// 重新启用，保留原记录 ID
		old := existing.Snapshot()
		existing.IsActive = true
		existing.Source = source
		existing.SourceRef = params.SourceRef
		existing.AddedBy = performedBy
		if params.Notes != "" {
			existing.Notes = params.Notes
		}

		updated, err := s.repo.Update(ctx, existing)
		if err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		if _, err := s.history.Create(ctx, &domain.DomainHistory{
			DomainID:    updated.ID,
			Domain:      updated.Domain,
			Action:      domain.HistoryActionActivated,
			OldValue:    old,
			NewValue:    updated.Snapshot(),
			PerformedBy: performedBy,
		}); err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}

		s.invalidate(ctx)
		s.logger.Info("domain reactivated", zap.String("domain", updated.Domain), zap.String("actor", performedBy))
		return s.toDTO(updated), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	created, err := s.repo.Create(ctx, &domain.BlockedDomain{
		Domain:    name,
		IsActive:  true,
		Source:    source,
		SourceRef: params.SourceRef,
		Notes:     params.Notes,
		AddedBy:   performedBy,
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if _, err := s.history.Create(ctx, &domain.DomainHistory{
		DomainID:    created.ID,
		Domain:      created.Domain,
		Action:      domain.HistoryActionAdded,
		NewValue:    created.Snapshot(),
		PerformedBy: performedBy,
	}); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.invalidate(ctx)
	s.logger.Info("domain added", zap.String("domain", created.Domain), zap.String("actor", performedBy))
	return s.toDTO(created), nil
}

// AddBulk 批量添加域名
// 非法域名收集返回，批内重复和已存在的都计入 duplicated，只有真正写入的落历史
func (s *domainService) AddBulk(ctx context.Context, performedBy string, params *dto.DomainBulkAddRequest) (*dto.DomainBulkAddDTO, error) {
	source := domain.DomainSource(params.Source)
	if source == "" {
		source = domain.DomainSourceBulk
	}

	var invalid []string
	var duplicated int64
	seen := make(map[string]struct{}, len(params.Domains))
	unique := make([]string, 0, len(params.Domains))
	for _, raw := range params.Domains {
		name := util.NormalizeDomain(raw)
		if !util.IsValidDomain(name) {
			invalid = append(invalid, raw)
			continue
		}
		if _, ok := seen[name]; ok {
			duplicated++
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	result := &dto.DomainBulkAddDTO{
		Submitted: len(params.Domains),
		Invalid:   invalid,
	}
	if len(unique) == 0 {
		result.Duplicated = duplicated
		return result, nil
	}

	existing, err := s.repo.ListExistingNames(ctx, unique)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
	}

	batch := make([]*domain.BlockedDomain, 0, len(unique))
	newNames := make([]string, 0, len(unique))
	for _, name := range unique {
		if _, ok := existingSet[name]; ok {
			duplicated++
			continue
		}
		newNames = append(newNames, name)
		batch = append(batch, &domain.BlockedDomain{
			Domain:    name,
			IsActive:  true,
			Source:    source,
			SourceRef: params.SourceRef,
			AddedBy:   performedBy,
		})
	}
	result.Duplicated = duplicated
	if len(batch) == 0 {
		return result, nil
	}

	if err := s.repo.BulkCreate(ctx, batch); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	result.Added = int64(len(batch))

	// 回查写入记录，历史行带上真实 ID
	created, err := s.repo.ListByNames(ctx, newNames)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	histories := make([]*domain.DomainHistory, 0, len(created))
	for _, d := range created {
		histories = append(histories, &domain.DomainHistory{
			DomainID:    d.ID,
			Domain:      d.Domain,
			Action:      domain.HistoryActionAdded,
			NewValue:    d.Snapshot(),
			PerformedBy: performedBy,
		})
	}
	if err := s.history.CreateBatch(ctx, histories); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.invalidate(ctx)
	s.logger.Info("domains bulk added",
		zap.Int("submitted", result.Submitted),
		zap.Int64("added", result.Added),
		zap.Int64("duplicated", result.Duplicated),
		zap.Int("invalid", len(invalid)),
		zap.String("actor", performedBy))
	return result, nil
}

// Get 根据 ID 获取域名
func (s *domainService) Get(ctx context.Context, id int64) (*dto.DomainDTO, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDomainNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.toDTO(d), nil
}

// SetActive 启用或停用域名，状态未变化时直接返回当前记录
func (s *domainService) SetActive(ctx context.Context, id int64, active bool, performedBy string) (*dto.DomainDTO, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDomainNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if d.IsActive == active {
		return s.toDTO(d), nil
	}

	action := domain.HistoryActionActivated
	if !active {
		action = domain.HistoryActionDeactivated
	}
	old := d.Snapshot()
	d.IsActive = active

	updated, err := s.repo.Update(ctx, d)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if _, err := s.history.Create(ctx, &domain.DomainHistory{
		DomainID:    updated.ID,
		Domain:      updated.Domain,
		Action:      action,
		OldValue:    old,
		NewValue:    updated.Snapshot(),
		PerformedBy: performedBy,
	}); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.invalidate(ctx)
	return s.toDTO(updated), nil
}

// Remove 停用域名并记录 removed 历史
func (s *domainService) Remove(ctx context.Context, id int64, performedBy string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorDomainNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	old := d.Snapshot()
	d.IsActive = false
	updated, err := s.repo.Update(ctx, d)
	if err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	if _, err := s.history.Create(ctx, &domain.DomainHistory{
		DomainID:    updated.ID,
		Domain:      updated.Domain,
		Action:      domain.HistoryActionRemoved,
		OldValue:    old,
		NewValue:    updated.Snapshot(),
		PerformedBy: performedBy,
	}); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.invalidate(ctx)
	s.logger.Info("domain removed", zap.String("domain", updated.Domain), zap.String("actor", performedBy))
	return nil
}

// Delete 物理删除域名，先落历史再删除
func (s *domainService) Delete(ctx context.Context, id int64, performedBy string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorDomainNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	if _, err := s.history.Create(ctx, &domain.DomainHistory{
		DomainID:    d.ID,
		Domain:      d.Domain,
		Action:      domain.HistoryActionRemoved,
		OldValue:    d.Snapshot(),
		PerformedBy: performedBy,
	}); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.invalidate(ctx)
	s.logger.Info("domain deleted", zap.String("domain", d.Domain), zap.String("actor", performedBy))
	return nil
}

// List 分页获取域名列表
func (s *domainService) List(ctx context.Context, params *dto.DomainListRequest) ([]*dto.DomainDTO, int64, error) {
	q := domain.DomainQuery{
		Keyword:  params.Keyword,
		Source:   domain.DomainSource(params.Source),
		IsActive: params.IsActive,
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	list, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.repo.ListCount(ctx, q)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := make([]*dto.DomainDTO, 0, len(list))
	for _, d := range list {
		result = append(result, s.toDTO(d))
	}
	return result, count, nil
}

// Count 获取域名数量统计
func (s *domainService) Count(ctx context.Context) (*dto.DomainCountDTO, error) {
	total, err := s.repo.CountTotal(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	active, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return &dto.DomainCountDTO{
		Total:    total,
		Active:   active,
		Inactive: total - active,
	}, nil
}

// ActiveList 获取启用域名列表
// 缓存直读，未命中时用 Singleflight 合并并发回源
func (s *domainService) ActiveList(ctx context.Context) ([]string, error) {
	var cached []string
	if s.cache.Get(ctx, cache.KeyActiveDomains, &cached) {
		return cached, nil
	}

	result, err, _ := s.sf.Do("domains_active_list", func() (interface{}, error) {
		names, err := s.repo.ListActiveNames(ctx)
		if err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		if names == nil {
			names = []string{}
		}
		s.cache.Set(ctx, cache.KeyActiveDomains, names, cache.TTLActiveDomains)
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Export 导出启用域名
// json 携带数量、生成时间与列表，withMetadata 时返回完整记录；txt 一行一个；rpz 输出 CNAME . 规则
func (s *domainService) Export(ctx context.Context, format string, withMetadata bool) ([]byte, string, error) {
	switch format {
	case "json", "":
		generatedAt := time.Now().UTC().Format(time.RFC3339)
		if withMetadata {
			list, err := s.repo.ListActive(ctx)
			if err != nil {
				return nil, "", code.ErrorDBQuery.WithDetails(err.Error())
			}
			items := make([]*dto.DomainDTO, 0, len(list))
			for _, d := range list {
				items = append(items, s.toDTO(d))
			}
			body, err := json.Marshal(map[string]any{
				"count":     len(items),
				"timestamp": generatedAt,
				"domains":   items,
			})
			if err != nil {
				return nil, "", code.ErrorServerInternal.WithDetails(err.Error())
			}
			return body, "application/json", nil
		}

		names, err := s.ActiveList(ctx)
		if err != nil {
			return nil, "", err
		}
		body, err := json.Marshal(map[string]any{
			"count":     len(names),
			"timestamp": generatedAt,
			"domains":   names,
		})
		if err != nil {
			return nil, "", code.ErrorServerInternal.WithDetails(err.Error())
		}
		return body, "application/json", nil

	case "txt":
		names, err := s.ActiveList(ctx)
		if err != nil {
			return nil, "", err
		}
		var b strings.Builder
		for _, name := range names {
			b.WriteString(name)
			b.WriteByte('\n')
		}
		return []byte(b.String()), "text/plain; charset=utf-8", nil

	case "rpz":
		names, err := s.ActiveList(ctx)
		if err != nil {
			return nil, "", err
		}
		var b strings.Builder
		b.WriteString("; response policy zone generated by blocklist-sync-service\n")
		for _, name := range names {
			fmt.Fprintf(&b, "%s CNAME .\n", name)
		}
		return []byte(b.String()), "text/plain; charset=utf-8", nil
	}
	return nil, "", code.ErrorInvalidParams.WithDetails("format: " + format)
}

// History 分页获取域名变更历史
func (s *domainService) History(ctx context.Context, params *dto.DomainHistoryListRequest) ([]*dto.DomainHistoryDTO, int64, error) {
	q := domain.HistoryQuery{
		DomainID: params.DomainID,
		Domain:   util.NormalizeDomain(params.Domain),
		Action:   domain.HistoryAction(params.Action),
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	list, err := s.history.List(ctx, q)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.history.ListCount(ctx, q)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := make([]*dto.DomainHistoryDTO, 0, len(list))
	for _, h := range list {
		result = append(result, &dto.DomainHistoryDTO{
			ID:          h.ID,
			DomainID:    h.DomainID,
			Domain:      h.Domain,
			Action:      string(h.Action),
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			PerformedBy: h.PerformedBy,
			PerformedAt: timex.Time(h.PerformedAt),
		})
	}
	return result, count, nil
}
