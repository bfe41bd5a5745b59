package routers

import (
	"time"

	"github.com/br10net/blocklist-sync-service/internal/app"
	"github.com/br10net/blocklist-sync-service/internal/middleware"
	"github.com/br10net/blocklist-sync-service/internal/routers/api_router"
	"github.com/br10net/blocklist-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// 管理端接口使用令牌桶限流，认证接口单独收紧
var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/v1/auth",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
	limiter.BucketRule{
		Key:          "/api/v1/admin",
		FillInterval: time.Second,
		Capacity:     50,
		Quantum:      50,
	},
)

// NewRouter 创建公共 HTTP 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()

	// 创建 Handlers（注入 App Container）
	versionHandler := api_router.NewVersionHandler(appContainer)
	authHandler := api_router.NewAuthHandler(appContainer)
	syncHandler := api_router.NewSyncHandler(appContainer)
	domainHandler := api_router.NewDomainHandler(appContainer)
	clientHandler := api_router.NewClientHandler(appContainer)
	pushHandler := api_router.NewPushHandler(appContainer)

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithVersion(app.Name, appContainer.Version().Version))
		api.Use(gin.Logger())
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 服务端版本号接口（无需认证）
		api.GET("/version", versionHandler.ServerVersion)

		// 管理端 Token 签发
		api.POST("/v1/auth/token", authHandler.Token)

		// 解析器客户端接口（API Key 认证 + Redis 限流）
		client := api.Group("/v1/client")
		client.Use(middleware.ClientAuthWithService(appContainer.ClientService, appContainer.Logger()))
		client.Use(middleware.ClientRateLimiter(appContainer.RateLimiter))
		{
			client.GET("/ping", syncHandler.Ping)
			client.GET("/domains", syncHandler.Domains)
			client.GET("/domains/count", syncHandler.DomainsCount)
			client.POST("/sync/start", syncHandler.SyncStart)
			client.POST("/sync/complete", syncHandler.SyncComplete)
			client.GET("/sync/history", syncHandler.SyncHistory)
			client.GET("/status", syncHandler.Status)
		}

		// 管理端接口（JWT Token 认证）
		admin := api.Group("/v1/admin")
		admin.Use(middleware.AdminAuthTokenWithConfig(cfg.Security.AuthTokenKey))
		{
			admin.GET("/domains", domainHandler.List)
			admin.POST("/domains", domainHandler.Add)
			admin.POST("/domains/bulk", domainHandler.AddBulk)
			admin.GET("/domains/get", domainHandler.Get)
			admin.GET("/domains/count", domainHandler.Count)
			admin.POST("/domains/active", domainHandler.SetActive)
			admin.POST("/domains/remove", domainHandler.Remove)
			admin.DELETE("/domains", domainHandler.Delete)
			admin.GET("/domains/history", domainHandler.History)
			admin.GET("/domains/export", domainHandler.Export)

			admin.GET("/clients", clientHandler.List)
			admin.POST("/clients", clientHandler.Create)
			admin.GET("/clients/get", clientHandler.Get)
			admin.POST("/clients/update", clientHandler.Update)
			admin.POST("/clients/rotate-key", clientHandler.RotateKey)
			admin.DELETE("/clients", clientHandler.Delete)
			admin.GET("/clients/syncs", clientHandler.SyncHistory)
			admin.GET("/clients/stale", clientHandler.Stale)
			admin.GET("/clients/offline", clientHandler.Offline)

			admin.POST("/push/client", pushHandler.PushClient)
			admin.POST("/push/all", pushHandler.PushAll)
			admin.GET("/push/health", pushHandler.Health)
			admin.GET("/syncs/recent", pushHandler.RecentSyncs)
			admin.GET("/stats", pushHandler.Stats)
		}
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
