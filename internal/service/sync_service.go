package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
	"github.com/br10net/blocklist-sync-service/pkg/util"
	"github.com/br10net/blocklist-sync-service/pkg/workerpool"
)

const (
	defaultPushTimeout   = 30 * time.Second
	defaultHealthTimeout = 10 * time.Second
)

// SyncService 定义同步协调业务服务接口
type SyncService interface {
	// Start 开启一次同步，创建 pending 记录并将客户端置为 syncing
	Start(ctx context.Context, client *domain.DNSClient) (*dto.SyncDTO, error)

	// Complete 客户端上报同步结果，仅允许本人上报且只能从 pending 进入终态
	Complete(ctx context.Context, client *domain.DNSClient, params *dto.SyncCompleteRequest) (*dto.SyncDTO, error)

	// History 分页获取指定客户端的同步历史
	History(ctx context.Context, clientID int64, page, pageSize int) ([]*dto.SyncDTO, int64, error)

	// Recent 获取最近的同步记录
	Recent(ctx context.Context, limit int) ([]*dto.SyncDTO, error)

	// PushToClient 主动向单个客户端推送当前启用域名
	PushToClient(ctx context.Context, clientID int64) (*dto.PushResultDTO, error)

	// PushToAll 并发向全部启用客户端推送，失败互相隔离
	PushToAll(ctx context.Context) (*dto.PushAllResultDTO, error)

	// CheckHealth 探测客户端健康接口，探测失败不返回错误
	CheckHealth(ctx context.Context, clientID int64) (*dto.ClientHealthDTO, error)
}

// syncService 实现 SyncService 接口
type syncService struct {
	repo       domain.SyncRepository
	clients    domain.ClientRepository
	domainsSvc DomainService
	cache      cache.Cache
	push       *PushClient
	pool       *workerpool.Pool
	logger     *zap.Logger
}

// NewSyncService 创建 SyncService 实例
func NewSyncService(
	repo domain.SyncRepository,
	clients domain.ClientRepository,
	domainsSvc DomainService,
	c cache.Cache,
	pool *workerpool.Pool,
	cfg PushServiceConfig,
	logger *zap.Logger,
) SyncService {
	pushTimeout := defaultPushTimeout
	if d, err := util.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		pushTimeout = d
	}
	healthTimeout := defaultHealthTimeout
	if d, err := util.ParseDuration(cfg.HealthTimeout); err == nil && d > 0 {
		healthTimeout = d
	}

	return &syncService{
		repo:       repo,
		clients:    clients,
		domainsSvc: domainsSvc,
		cache:      c,
		push:       NewPushClient(pushTimeout, healthTimeout),
		pool:       pool,
		logger:     logger,
	}
}

// toDTO 将领域模型转换为 DTO
func (s *syncService) toDTO(r *domain.SyncHistory) *dto.SyncDTO {
	if r == nil {
		return nil
	}
	d := &dto.SyncDTO{
		ID:              r.ID,
		ClientID:        r.ClientID,
		Status:          string(r.Status),
		DomainsSent:     r.DomainsSent,
		DomainsApplied:  r.DomainsApplied,
		Message:         r.Message,
		ErrorDetails:    r.ErrorDetails,
		DurationSeconds: r.DurationSeconds,
		StartedAt:       timex.Time(r.StartedAt),
	}
	if r.CompletedAt != nil {
		t := timex.Time(*r.CompletedAt)
		d.CompletedAt = &t
	}
	return d
}

// invalidateClient 清理客户端状态和统计缓存
func (s *syncService) invalidateClient(ctx context.Context, clientID int64) {
	s.cache.Delete(ctx, cache.ClientStatusKey(clientID), cache.KeyGeneralStats)
}

// Start 开启一次同步
func (s *syncService) Start(ctx context.Context, client *domain.DNSClient) (*dto.SyncDTO, error) {
	domains, err := s.domainsSvc.ActiveList(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.SyncHistory{
		ClientID:    client.ID,
		Status:      domain.SyncStatusPending,
		DomainsSent: int64(len(domains)),
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if err := s.clients.UpdateStatus(ctx, client.ID, domain.ClientStatusSyncing); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.invalidateClient(ctx, client.ID)
	s.logger.Info("sync started",
		zap.Int64("syncId", created.ID),
		zap.Int64("clientId", client.ID),
		zap.Int64("domainsSent", created.DomainsSent))
	return s.toDTO(created), nil
}

// Complete 客户端上报同步结果
func (s *syncService) Complete(ctx context.Context, client *domain.DNSClient, params *dto.SyncCompleteRequest) (*dto.SyncDTO, error) {
	record, err := s.repo.GetByID(ctx, params.SyncID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorSyncNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	// 只允许发起同步的客户端上报结果
	if record.ClientID != client.ID {
		return nil, code.ErrorSyncOwnership
	}

	next := domain.SyncStatus(params.Status)
	if !next.IsValid() {
		return nil, code.ErrorSyncStatusInvalid.WithDetails(params.Status)
	}
	if !record.CanTransitionTo(next) {
		return nil, code.ErrorSyncFinalized
	}

	now := time.Now()
	record.Status = next
	record.DomainsApplied = params.DomainsApplied
	record.Message = params.Message
	record.ErrorDetails = params.ErrorDetails
	record.CompletedAt = &now
	record.DurationSeconds = now.Sub(record.StartedAt).Seconds()
	// 客户端上报的耗时优先，缺省按服务端墙钟差
	if params.DurationSeconds != nil {
		record.DurationSeconds = *params.DurationSeconds
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	// 任何终态都刷新同步结果列，否则失败客户端会被一直判定为待同步
	if err := s.clients.UpdateSyncResult(ctx, client.ID, now, params.DomainsApplied); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	// success 才视为同步成功，partial 和 failed 标记为 error 状态
	nextStatus := domain.ClientStatusOnline
	if next != domain.SyncStatusSuccess {
		nextStatus = domain.ClientStatusError
	}
	if err := s.clients.UpdateStatus(ctx, client.ID, nextStatus); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.invalidateClient(ctx, client.ID)
	s.logger.Info("sync completed",
		zap.Int64("syncId", updated.ID),
		zap.Int64("clientId", client.ID),
		zap.String("status", string(updated.Status)),
		zap.Float64("duration", updated.DurationSeconds))
	return s.toDTO(updated), nil
}

// History 分页获取指定客户端的同步历史
func (s *syncService) History(ctx context.Context, clientID int64, page, pageSize int) ([]*dto.SyncDTO, int64, error) {
	list, err := s.repo.ListByClient(ctx, clientID, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.repo.CountByClient(ctx, clientID)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := make([]*dto.SyncDTO, 0, len(list))
	for _, r := range list {
		result = append(result, s.toDTO(r))
	}
	return result, count, nil
}

// Recent 获取最近的同步记录
func (s *syncService) Recent(ctx context.Context, limit int) ([]*dto.SyncDTO, error) {
	if limit <= 0 {
		limit = 10
	}
	list, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := make([]*dto.SyncDTO, 0, len(list))
	for _, r := range list {
		result = append(result, s.toDTO(r))
	}
	return result, nil
}

// PushToClient 主动向单个客户端推送当前启用域名
func (s *syncService) PushToClient(ctx context.Context, clientID int64) (*dto.PushResultDTO, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorClientNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !client.IsActive {
		return nil, code.ErrorClientDisabled
	}
	if client.PushEndpoint() == "" {
		return nil, code.ErrorPushNoEndpoint.WithDetails(client.Name)
	}
	return s.pushOne(ctx, client), nil
}

// pushOne 执行单客户端推送并记录同步结果
func (s *syncService) pushOne(ctx context.Context, client *domain.DNSClient) *dto.PushResultDTO {
	result := &dto.PushResultDTO{
		ClientID: client.ID,
		Client:   client.Name,
	}

	endpoint := client.PushEndpoint()
	if endpoint == "" {
		result.Outcome = "skipped"
		result.Detail = "no push endpoint configured"
		return result
	}

	domains, err := s.domainsSvc.ActiveList(ctx)
	if err != nil {
		result.Outcome = "failed"
		result.Detail = err.Error()
		return result
	}

	record, err := s.repo.Create(ctx, &domain.SyncHistory{
		ClientID:    client.ID,
		Status:      domain.SyncStatusPending,
		DomainsSent: int64(len(domains)),
	})
	if err != nil {
		result.Outcome = "failed"
		result.Detail = err.Error()
		return result
	}
	result.SyncID = record.ID
	result.RequestID = uuid.NewString()

	payload := &PushPayload{
		RequestID:   result.RequestID,
		SyncID:      record.ID,
		Count:       len(domains),
		Domains:     domains,
		GeneratedAt: timex.Now().Time().Format(time.RFC3339),
	}

	now := time.Now()
	applied, pushErr := s.push.Push(ctx, endpoint, client.PushSecret(), payload)
	completedAt := time.Now()
	record.CompletedAt = &completedAt
	record.DurationSeconds = completedAt.Sub(now).Seconds()

	if pushErr != nil {
		detail := pushErr.Error()
		if IsTimeout(pushErr) {
			detail = "push timeout: " + detail
		}
		record.Status = domain.SyncStatusFailed
		record.ErrorDetails = detail
		if _, err := s.repo.Update(ctx, record); err != nil {
			s.logger.Error("record push failure", zap.Int64("syncId", record.ID), zap.Error(err))
		}
		if err := s.clients.UpdateStatus(ctx, client.ID, domain.ClientStatusError); err != nil {
			s.logger.Error("update client status", zap.Int64("clientId", client.ID), zap.Error(err))
		}

		s.invalidateClient(ctx, client.ID)
		s.logger.Warn("push failed",
			zap.Int64("clientId", client.ID),
			zap.String("client", client.Name),
			zap.Error(pushErr))
		result.Outcome = "failed"
		result.Detail = detail
		return result
	}

	record.Status = domain.SyncStatusSuccess
	record.DomainsApplied = applied
	record.Message = "pushed"
	if _, err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("record push success", zap.Int64("syncId", record.ID), zap.Error(err))
	}
	if err := s.clients.UpdateSyncResult(ctx, client.ID, completedAt, applied); err != nil {
		s.logger.Error("update client sync result", zap.Int64("clientId", client.ID), zap.Error(err))
	}
	if err := s.clients.UpdateStatus(ctx, client.ID, domain.ClientStatusOnline); err != nil {
		s.logger.Error("update client status", zap.Int64("clientId", client.ID), zap.Error(err))
	}

	s.invalidateClient(ctx, client.ID)
	s.logger.Info("push succeeded",
		zap.Int64("clientId", client.ID),
		zap.String("client", client.Name),
		zap.Int64("applied", applied))
	result.Outcome = "success"
	result.Applied = applied
	return result
}

// PushToAll 并发向全部启用客户端推送
// 每个客户端独立提交到协程池，单个失败不影响其余
func (s *syncService) PushToAll(ctx context.Context) (*dto.PushAllResultDTO, error) {
	clients, err := s.clients.ListEnabled(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := &dto.PushAllResultDTO{
		Total:   len(clients),
		Details: make([]*dto.PushResultDTO, 0, len(clients)),
	}
	if len(clients) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, client := range clients {
		client := client
		wg.Add(1)
		err := s.pool.SubmitAsync(ctx, func(taskCtx context.Context) error {
			defer wg.Done()
			r := s.pushOne(taskCtx, client)
			mu.Lock()
			result.Details = append(result.Details, r)
			mu.Unlock()
			return nil
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			result.Details = append(result.Details, &dto.PushResultDTO{
				ClientID: client.ID,
				Client:   client.Name,
				Outcome:  "failed",
				Detail:   err.Error(),
			})
			mu.Unlock()
		}
	}
	wg.Wait()

	for _, r := range result.Details {
		switch r.Outcome {
		case "success":
			result.Success++
		case "skipped":
			result.Skipped++
		default:
			result.Failed++
		}
	}

	s.logger.Info("push to all finished",
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// CheckHealth 探测客户端健康接口
func (s *syncService) CheckHealth(ctx context.Context, clientID int64) (*dto.ClientHealthDTO, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorClientNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	result := &dto.ClientHealthDTO{
		ClientID: client.ID,
		Client:   client.Name,
	}

	endpoint := client.HealthEndpoint()
	if endpoint == "" {
		result.Status = "error"
		result.Detail = "no health endpoint configured"
		return result, nil
	}

	latency, err := s.push.Health(ctx, endpoint)
	result.LatencyMs = latency
	if err != nil {
		result.Status = "error"
		if IsTimeout(err) {
			result.Status = "timeout"
		}
		result.Detail = err.Error()
		return result, nil
	}
	result.Healthy = true
	result.Status = "online"
	result.Detail = "ok"
	return result, nil
}
