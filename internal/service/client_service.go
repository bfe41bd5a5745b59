package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
	"github.com/br10net/blocklist-sync-service/pkg/util"
)

const (
	defaultStaleAfter   = 24 * time.Hour
	defaultOfflineAfter = 10 * time.Minute
)

// ClientService 定义客户端业务服务接口
type ClientService interface {
	// Create 创建客户端并生成 API Key，Key 仅此一次返回
	Create(ctx context.Context, params *dto.ClientCreateRequest) (*dto.ClientWithKeyDTO, error)

	// Get 根据 ID 获取客户端
	Get(ctx context.Context, id int64) (*dto.ClientDTO, error)

	// Update 更新客户端描述、地址、启用状态和元数据
	Update(ctx context.Context, id int64, params *dto.ClientUpdateRequest) (*dto.ClientDTO, error)

	// Delete 删除客户端
	Delete(ctx context.Context, id int64) error

	// List 分页获取客户端列表
	List(ctx context.Context, params *dto.ClientListRequest) ([]*dto.ClientDTO, int64, error)

	// RotateKey 轮换客户端 API Key，旧 Key 立即失效
	RotateKey(ctx context.Context, id int64) (*dto.ClientWithKeyDTO, error)

	// Authenticate 根据 API Key 认证客户端
	Authenticate(ctx context.Context, apiKey string) (*domain.DNSClient, error)

	// Heartbeat 记录客户端心跳，同步中的客户端保持 syncing 状态
	Heartbeat(ctx context.Context, client *domain.DNSClient) error

	// Status 获取客户端状态视图，结果带短时缓存
	Status(ctx context.Context, client *domain.DNSClient) (*dto.ClientStatusDTO, error)

	// StaleClients 获取长时间未同步的启用客户端，纯读取不改状态
	StaleClients(ctx context.Context) ([]*dto.ClientReportDTO, error)

	// OfflineClients 获取长时间无心跳的启用客户端，纯读取不改状态
	OfflineClients(ctx context.Context) ([]*dto.ClientReportDTO, error)
}

// clientService 实现 ClientService 接口
type clientService struct {
	repo         domain.ClientRepository
	domains      domain.DomainRepository
	cache        cache.Cache
	logger       *zap.Logger
	staleAfter   time.Duration
	offlineAfter time.Duration
}

// NewClientService 创建 ClientService 实例
func NewClientService(repo domain.ClientRepository, domains domain.DomainRepository, c cache.Cache, cfg MonitorServiceConfig, logger *zap.Logger) ClientService {
	staleAfter := defaultStaleAfter
	if d, err := util.ParseDuration(cfg.StaleAfter); err == nil && d > 0 {
		staleAfter = d
	}
	offlineAfter := defaultOfflineAfter
	if d, err := util.ParseDuration(cfg.OfflineAfter); err == nil && d > 0 {
		offlineAfter = d
	}

	return &clientService{
		repo:         repo,
		domains:      domains,
		cache:        c,
		logger:       logger,
		staleAfter:   staleAfter,
		offlineAfter: offlineAfter,
	}
}

// toDTO 将领域模型转换为 DTO，不暴露 API Key
func (s *clientService) toDTO(c *domain.DNSClient) *dto.ClientDTO {
	if c == nil {
		return nil
	}
	d := &dto.ClientDTO{
		ID:           c.ID,
		Name:         c.Name,
		IPAddress:    c.IPAddress,
		Description:  c.Description,
		Status:       string(c.Status),
		IsActive:     c.IsActive,
		DomainsCount: c.DomainsCount,
		Metadata:     c.Metadata,
		CreatedAt:    timex.Time(c.CreatedAt),
		UpdatedAt:    timex.Time(c.UpdatedAt),
	}
	if c.LastSync != nil {
		t := timex.Time(*c.LastSync)
		d.LastSync = &t
	}
	if c.LastHeartbeat != nil {
		t := timex.Time(*c.LastHeartbeat)
		d.LastHeartbeat = &t
	}
	return d
}

func (s *clientService) toReportDTO(c *domain.DNSClient) *dto.ClientReportDTO {
	d := &dto.ClientReportDTO{
		ID:     c.ID,
		Name:   c.Name,
		Status: string(c.Status),
	}
	if c.LastSync != nil {
		t := timex.Time(*c.LastSync)
		d.LastSync = &t
	}
	if c.LastHeartbeat != nil {
		t := timex.Time(*c.LastHeartbeat)
		d.LastHeartbeat = &t
	}
	return d
}

// Create 创建客户端并生成 API Key
func (s *clientService) Create(ctx context.Context, params *dto.ClientCreateRequest) (*dto.ClientWithKeyDTO, error) {
	_, err := s.repo.GetByName(ctx, params.Name)
	if err == nil {
		return nil, code.ErrorClientNameExist.WithDetails(params.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	apiKey, err := util.GenerateAPIKey()
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	created, err := s.repo.Create(ctx, &domain.DNSClient{
		Name:        params.Name,
		APIKey:      apiKey,
		IPAddress:   params.IPAddress,
		Description: params.Description,
		Status:      domain.ClientStatusOffline,
		IsActive:    true,
		Metadata:    params.Metadata,
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("client created", zap.Int64("clientId", created.ID), zap.String("client", created.Name))
	return &dto.ClientWithKeyDTO{ClientDTO: *s.toDTO(created), APIKey: apiKey}, nil
}

// Get 根据 ID 获取客户端
func (s *clientService) Get(ctx context.Context, id int64) (*dto.ClientDTO, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorClientNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.toDTO(c), nil
}

// Update 更新客户端
// Metadata 为整体替换，传入时覆盖原有元数据
func (s *clientService) Update(ctx context.Context, id int64, params *dto.ClientUpdateRequest) (*dto.ClientDTO, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorClientNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	if params.Description != nil {
		c.Description = *params.Description
	}
	if params.IPAddress != nil {
		c.IPAddress = *params.IPAddress
	}
	if params.IsActive != nil {
		c.IsActive = *params.IsActive
	}
	if params.Metadata != nil {
		c.Metadata = params.Metadata
	}

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.cache.Delete(ctx, cache.ClientStatusKey(id), cache.KeyGeneralStats)
	return s.toDTO(updated), nil
}

// Delete 删除客户端
func (s *clientService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorClientNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.cache.Delete(ctx, cache.ClientStatusKey(id), cache.KeyGeneralStats)
	s.logger.Info("client deleted", zap.Int64("clientId", id))
	return nil
}

// List 分页获取客户端列表
func (s *clientService) List(ctx context.Context, params *dto.ClientListRequest) ([]*dto.ClientDTO, int64, error) {
	q := domain.ClientQuery{
		Keyword:  params.Keyword,
		Status:   domain.ClientStatus(params.Status),
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

	result := make([]*dto.ClientDTO, 0, len(list))
	for _, c := range list {
		result = append(result, s.toDTO(c))
	}
	return result, count, nil
}

// RotateKey 轮换客户端 API Key
func (s *clientService) RotateKey(ctx context.Context, id int64) (*dto.ClientWithKeyDTO, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorClientNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	apiKey, err := util.GenerateAPIKey()
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if err := s.repo.UpdateAPIKey(ctx, id, apiKey); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	c.APIKey = apiKey

	s.logger.Info("client api key rotated", zap.Int64("clientId", id), zap.String("client", c.Name))
	return &dto.ClientWithKeyDTO{ClientDTO: *s.toDTO(c), APIKey: apiKey}, nil
}

// Authenticate 根据 API Key 认证客户端
func (s *clientService) Authenticate(ctx context.Context, apiKey string) (*domain.DNSClient, error) {
	if apiKey == "" {
		return nil, code.ErrorNotAPIKey
	}

	c, err := s.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorInvalidAPIKey
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !c.IsActive {
		return nil, code.ErrorClientDisabled
	}
	return c, nil
}

// Heartbeat 记录客户端心跳
// 同步中的客户端保持 syncing，其余置为 online
func (s *clientService) Heartbeat(ctx context.Context, client *domain.DNSClient) error {
	status := domain.ClientStatusOnline
	if client.Status == domain.ClientStatusSyncing {
		status = domain.ClientStatusSyncing
	}
	if err := s.repo.UpdateHeartbeat(ctx, client.ID, status, time.Now()); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	return nil
}

// Status 获取客户端状态视图
func (s *clientService) Status(ctx context.Context, client *domain.DNSClient) (*dto.ClientStatusDTO, error) {
	key := cache.ClientStatusKey(client.ID)

	var cached dto.ClientStatusDTO
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	fresh, err := s.repo.GetByID(ctx, client.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorClientNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	activeDomains, err := s.domains.CountActive(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	status := &dto.ClientStatusDTO{
		ID:            fresh.ID,
		Name:          fresh.Name,
		Status:        string(fresh.Status),
		DomainsCount:  fresh.DomainsCount,
		ActiveDomains: activeDomains,
		InSync:        fresh.LastSync != nil && fresh.DomainsCount == activeDomains,
	}
	if fresh.LastSync != nil {
		t := timex.Time(*fresh.LastSync)
		status.LastSync = &t
	}
	if fresh.LastHeartbeat != nil {
		t := timex.Time(*fresh.LastHeartbeat)
		status.LastHeartbeat = &t
	}

	s.cache.Set(ctx, key, status, cache.TTLClientStatus)
	return status, nil
}

// StaleClients 获取长时间未同步的启用客户端
func (s *clientService) StaleClients(ctx context.Context) ([]*dto.ClientReportDTO, error) {
	list, err := s.repo.ListSyncedBefore(ctx, time.Now().Add(-s.staleAfter))
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := make([]*dto.ClientReportDTO, 0, len(list))
	for _, c := range list {
		result = append(result, s.toReportDTO(c))
	}
	return result, nil
}

// OfflineClients 获取长时间无心跳的启用客户端
func (s *clientService) OfflineClients(ctx context.Context) ([]*dto.ClientReportDTO, error) {
	list, err := s.repo.ListHeartbeatBefore(ctx, time.Now().Add(-s.offlineAfter))
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := make([]*dto.ClientReportDTO, 0, len(list))
	for _, c := range list {
		result = append(result, s.toReportDTO(c))
	}
	return result, nil
}
