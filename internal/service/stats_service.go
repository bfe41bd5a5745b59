package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	"github.com/br10net/blocklist-sync-service/pkg/timex"
)

// StatsService 定义总体统计服务接口
type StatsService interface {
	// General 获取总体统计视图，结果带短时缓存
	General(ctx context.Context) (*dto.GeneralStatsDTO, error)
}

// statsService 实现 StatsService 接口
type statsService struct {
	domains     domain.DomainRepository
	clients     domain.ClientRepository
	syncs       SyncService
	syncRepo    domain.SyncRepository
	cache       cache.Cache
	logger      *zap.Logger
	recentLimit int
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(
	domains domain.DomainRepository,
	clients domain.ClientRepository,
	syncRepo domain.SyncRepository,
	syncs SyncService,
	c cache.Cache,
	cfg MonitorServiceConfig,
	logger *zap.Logger,
) StatsService {
	recentLimit := cfg.RecentSyncs
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &statsService{
		domains:     domains,
		clients:     clients,
		syncs:       syncs,
		syncRepo:    syncRepo,
		cache:       c,
		logger:      logger,
		recentLimit: recentLimit,
	}
}

// General 获取总体统计视图
func (s *statsService) General(ctx context.Context) (*dto.GeneralStatsDTO, error) {
	var cached dto.GeneralStatsDTO
	if s.cache.Get(ctx, cache.KeyGeneralStats, &cached) {
		return &cached, nil
	}

	total, err := s.domains.CountTotal(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	active, err := s.domains.CountActive(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	bySource, err := s.domains.CountBySource(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	clientsByStatus, err := s.clients.CountByStatus(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	syncsByStatus, err := s.syncRepo.CountByStatus(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	recent, err := s.syncs.Recent(ctx, s.recentLimit)
	if err != nil {
		return nil, err
	}

	stats := &dto.GeneralStatsDTO{
		TotalDomains:    total,
		ActiveDomains:   active,
		DomainsBySource: make(map[string]int64, len(bySource)),
		ClientsByStatus: make(map[string]int64, len(clientsByStatus)),
		SyncsByStatus:   make(map[string]int64, len(syncsByStatus)),
		RecentSyncs:     recent,
		GeneratedAt:     timex.Now(),
	}
	for source, count := range bySource {
		stats.DomainsBySource[string(source)] = count
	}
	for status, count := range clientsByStatus {
		stats.ClientsByStatus[string(status)] = count
		stats.TotalClients += count
	}
	for status, count := range syncsByStatus {
		stats.SyncsByStatus[string(status)] = count
	}

	s.cache.Set(ctx, cache.KeyGeneralStats, stats, cache.TTLGeneralStats)
	return stats, nil
}
