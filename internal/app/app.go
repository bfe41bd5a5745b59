// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/dao"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/service"
	pkgapp "github.com/br10net/blocklist-sync-service/pkg/app"
	"github.com/br10net/blocklist-sync-service/pkg/workerpool"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool *workerpool.Pool

	// 缓存与限流
	redisClient *redis.Client
	Cache       cache.Cache
	RateLimiter *cache.RateLimiter

	// Repository 层
	DomainRepo  domain.DomainRepository
	HistoryRepo domain.DomainHistoryRepository
	ClientRepo  domain.ClientRepository
	SyncRepo    domain.SyncRepository

	// Service 层
	DomainService service.DomainService
	ClientService service.ClientService
	SyncService   service.SyncService
	StatsService  service.StatsService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 DAO
	a.Dao = dao.New(db)

	// 初始化缓存与限流（共享同一个 Redis 客户端）
	if cfg.Redis.Enabled {
		a.redisClient = cache.NewClient(cfg.Redis)
		a.Cache = cache.NewWithClient(a.redisClient, logger)
	} else {
		a.Cache = cache.NewNoop()
	}
	a.RateLimiter = cache.NewRateLimiter(a.redisClient, cfg.RateLimit, logger)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    "blocklist-sync-service",
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.DomainRepo = dao.NewDomainRepository(a.Dao)
	a.HistoryRepo = dao.NewHistoryRepository(a.Dao)
	a.ClientRepo = dao.NewClientRepository(a.Dao)
	a.SyncRepo = dao.NewSyncRepository(a.Dao)

	// 初始化 Service 层（依赖注入）
	svcConfig := cfg.GetServiceConfig()
	a.DomainService = service.NewDomainService(a.DomainRepo, a.HistoryRepo, a.Cache, logger)
	a.ClientService = service.NewClientService(a.ClientRepo, a.DomainRepo, a.Cache, svcConfig.Monitor, logger)
	a.SyncService = service.NewSyncService(a.SyncRepo, a.ClientRepo, a.DomainService, a.Cache, a.workerPool, svcConfig.Push, logger)
	a.StatsService = service.NewStatsService(a.DomainRepo, a.ClientRepo, a.SyncRepo, a.SyncService, a.Cache, svcConfig.Monitor, logger)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Bool("cacheEnabled", cfg.Redis.Enabled),
		zap.Bool("rateLimitEnabled", cfg.RateLimit.Enabled))

	return a, nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.logger.Warn("Cache close error", zap.Error(err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTask 提交任务到 Worker Pool
// 返回错误如果池已满或已关闭
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// SubmitTaskAsync 异步提交任务到 Worker Pool（不等待结果）
func (a *App) SubmitTaskAsync(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, task)
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsReturnSuccess 是否返回成功响应
func (a *App) IsReturnSuccess() bool {
	return a.config.App.IsReturnSussess
}

// GetAuthTokenKey 获取 Token 密钥
func (a *App) GetAuthTokenKey() string {
	return a.config.Security.AuthTokenKey
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> 后台操作 -> 缓存与数据库
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		} else {
			a.logger.Info("Worker pool shutdown completed")
		}
	}

	// 2. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 3. 关闭缓存与数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
