package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/dao"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/pkg/code"
	"github.com/br10net/blocklist-sync-service/pkg/workerpool"
)

// testEnv 测试服务环境，内存数据库加空缓存
type testEnv struct {
	domains    DomainService
	clients    ClientService
	syncs      SyncService
	stats      StatsService
	domainRepo domain.DomainRepository
	clientRepo domain.ClientRepository
	syncRepo   domain.SyncRepository
	pool       *workerpool.Pool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := dao.NewDBEngine(dao.Database{Type: "sqlite", Path: ":memory:"}, "release")
	if err != nil {
		t.Fatal(err)
	}
	d := dao.New(db)
	if err := d.Migrate(); err != nil {
		t.Fatal(err)
	}

	logger := zap.NewNop()
	c := cache.NewNoop()
	domainRepo := dao.NewDomainRepository(d)
	historyRepo := dao.NewHistoryRepository(d)
	clientRepo := dao.NewClientRepository(d)
	syncRepo := dao.NewSyncRepository(d)

	pool := workerpool.New(&workerpool.Config{MaxWorkers: 4, QueueSize: 32}, logger)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	domains := NewDomainService(domainRepo, historyRepo, c, logger)
	clients := NewClientService(clientRepo, domainRepo, c, MonitorServiceConfig{StaleAfter: "24h", OfflineAfter: "10m"}, logger)
	syncs := NewSyncService(syncRepo, clientRepo, domains, c, pool, PushServiceConfig{Timeout: "5s", HealthTimeout: "2s"}, logger)
	stats := NewStatsService(domainRepo, clientRepo, syncRepo, syncs, c, MonitorServiceConfig{RecentSyncs: 10}, logger)

	return &testEnv{
		domains:    domains,
		clients:    clients,
		syncs:      syncs,
		stats:      stats,
		domainRepo: domainRepo,
		clientRepo: clientRepo,
		syncRepo:   syncRepo,
		pool:       pool,
	}
}

// assertCode 断言错误携带预期的业务码
func assertCode(t *testing.T, err error, want *code.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected code %d, got nil error", want.Code())
	}
	got, ok := err.(*code.Code)
	if !ok {
		t.Fatalf("expected *code.Code, got %T: %v", err, err)
	}
	if got.Code() != want.Code() {
		t.Fatalf("expected code %d, got %d (%v)", want.Code(), got.Code(), got)
	}
}
