package dao

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gookit/goutil/dump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/br10net/blocklist-sync-service/internal/domain"
)

// testDao 创建内存数据库实例
func testDao(t *testing.T) *Dao {
	t.Helper()

	db, err := NewDBEngine(Database{Type: "sqlite", Path: ":memory:"}, "release")
	if err != nil {
		t.Fatal(err)
	}

	d := New(db)
	if err := d.Migrate(); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDomainCreateAndGet(t *testing.T) {
	d := testDao(t)
	repo := NewDomainRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.BlockedDomain{
		Domain:   "ads.example.com",
		IsActive: true,
		Source:   domain.DomainSourceManual,
		AddedBy:  "admin",
		Notes:    "test entry",
	})
	require.NoError(t, err)

	dump.P(created)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "ads.example.com", created.Domain)
	assert.True(t, created.IsActive)

	got, err := repo.GetByName(ctx, "ads.example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.DomainSourceManual, got.Source)
}

func TestDomainBulkCreateSkipsDuplicates(t *testing.T) {
	d := testDao(t)
	repo := NewDomainRepository(d)
	ctx := context.Background()

	existing, err := repo.Create(ctx, &domain.BlockedDomain{
		Domain:   "a.example.com",
		IsActive: true,
		Source:   domain.DomainSourceManual,
	})
	require.NoError(t, err)

	err = repo.BulkCreate(ctx, []*domain.BlockedDomain{
		{Domain: "a.example.com", IsActive: true, Source: domain.DomainSourceBulk},
		{Domain: "b.example.com", IsActive: true, Source: domain.DomainSourceBulk},
		{Domain: "c.example.com", IsActive: true, Source: domain.DomainSourceBulk},
	})
	require.NoError(t, err)

	// a.example.com 已存在，唯一索引跳过，不新增行
	total, err := repo.CountTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	kept, err := repo.GetByName(ctx, "a.example.com")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, kept.ID)
	assert.Equal(t, domain.DomainSourceManual, kept.Source)

	list, err := repo.ListByNames(ctx, []string{"b.example.com", "c.example.com"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, got := range list {
		assert.NotZero(t, got.ID)
		assert.Equal(t, domain.DomainSourceBulk, got.Source)
	}
}

func TestMemoryDatabaseSharedAcrossConnections(t *testing.T) {
	db, err := NewDBEngine(Database{Type: "sqlite", Path: ":memory:"}, "release")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库连接池必须收敛到单连接，否则每个连接拿到的是各自的空库
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	d := New(db)
	require.NoError(t, d.Migrate())
	repo := NewDomainRepository(d)
	ctx := context.Background()

	for _, name := range []string{"p1.example.com", "p2.example.com", "p3.example.com"} {
		_, err := repo.Create(ctx, &domain.BlockedDomain{Domain: name, IsActive: true, Source: domain.DomainSourceManual})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := repo.CountTotal(ctx)
			if err != nil {
				errs <- err
				return
			}
			if count != 3 {
				errs <- fmt.Errorf("unexpected count %d", count)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestDomainListActiveNamesSorted(t *testing.T) {
	d := testDao(t)
	repo := NewDomainRepository(d)
	ctx := context.Background()

	for _, name := range []string{"z.example.com", "a.example.com", "m.example.com"} {
		_, err := repo.Create(ctx, &domain.BlockedDomain{Domain: name, IsActive: true, Source: domain.DomainSourceManual})
		require.NoError(t, err)
	}
	inactive, err := repo.Create(ctx, &domain.BlockedDomain{Domain: "off.example.com", IsActive: false, Source: domain.DomainSourceManual})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	names, err := repo.ListActiveNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.com", "m.example.com", "z.example.com"}, names)
}

func TestDomainUpdatePreservesID(t *testing.T) {
	d := testDao(t)
	repo := NewDomainRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.BlockedDomain{Domain: "x.example.com", IsActive: true, Source: domain.DomainSourceManual})
	require.NoError(t, err)

	created.IsActive = false
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.False(t, updated.IsActive)

	active, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), active)
}

func TestHistoryListByDomain(t *testing.T) {
	d := testDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.DomainHistory{
		DomainID: 1,
		Domain:   "h.example.com",
		Action:   domain.HistoryActionAdded,
		NewValue: map[string]any{"is_active": true},
	})
	require.NoError(t, err)

	err = repo.CreateBatch(ctx, []*domain.DomainHistory{
		{DomainID: 1, Domain: "h.example.com", Action: domain.HistoryActionDeactivated,
			OldValue: map[string]any{"is_active": true},
			NewValue: map[string]any{"is_active": false}},
		{DomainID: 2, Domain: "other.example.com", Action: domain.HistoryActionAdded},
	})
	require.NoError(t, err)

	list, err := repo.List(ctx, domain.HistoryQuery{Domain: "h.example.com", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	count, err := repo.ListCount(ctx, domain.HistoryQuery{DomainID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 快照字段应能还原
	var deactivated *domain.DomainHistory
	for _, h := range list {
		if h.Action == domain.HistoryActionDeactivated {
			deactivated = h
		}
	}
	require.NotNil(t, deactivated)
	assert.Equal(t, false, deactivated.NewValue["is_active"])
}

func TestClientHeartbeatAndSyncResult(t *testing.T) {
	d := testDao(t)
	repo := NewClientRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.DNSClient{
		Name:     "resolver-1",
		APIKey:   "test-key-1",
		IsActive: true,
		Status:   domain.ClientStatusOffline,
		Metadata: map[string]any{"push_endpoint": "http://127.0.0.1:5353/update", "region": "eu"},
	})
	require.NoError(t, err)
	assert.Nil(t, created.LastHeartbeat)

	now := time.Now()
	require.NoError(t, repo.UpdateHeartbeat(ctx, created.ID, domain.ClientStatusOnline, now))
	require.NoError(t, repo.UpdateSyncResult(ctx, created.ID, now, 120))

	got, err := repo.GetByAPIKey(ctx, "test-key-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusOnline, got.Status)
	assert.NotNil(t, got.LastHeartbeat)
	assert.NotNil(t, got.LastSync)
	assert.Equal(t, int64(120), got.DomainsCount)

	// 未知 metadata 键应原样保留
	assert.Equal(t, "eu", got.Metadata["region"])
	assert.Equal(t, "http://127.0.0.1:5353/update", got.PushEndpoint())
}

func TestClientListSyncedBeforeIncludesNeverSynced(t *testing.T) {
	d := testDao(t)
	repo := NewClientRepository(d)
	ctx := context.Background()

	fresh, err := repo.Create(ctx, &domain.DNSClient{Name: "fresh", APIKey: "key-fresh", IsActive: true, Status: domain.ClientStatusOnline})
	require.NoError(t, err)
	stale, err := repo.Create(ctx, &domain.DNSClient{Name: "stale", APIKey: "key-stale", IsActive: true, Status: domain.ClientStatusOnline})
	require.NoError(t, err)
	never, err := repo.Create(ctx, &domain.DNSClient{Name: "never", APIKey: "key-never", IsActive: true, Status: domain.ClientStatusOffline})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.UpdateSyncResult(ctx, fresh.ID, now, 10))
	require.NoError(t, repo.UpdateSyncResult(ctx, stale.ID, now.Add(-48*time.Hour), 10))

	list, err := repo.ListSyncedBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)

	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"stale", "never"}, names)
	_ = never
}

func TestSyncRepositoryLifecycle(t *testing.T) {
	d := testDao(t)
	repo := NewSyncRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.SyncHistory{
		ClientID:    7,
		Status:      domain.SyncStatusPending,
		DomainsSent: 50,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Nil(t, created.CompletedAt)

	completedAt := time.Now()
	created.Status = domain.SyncStatusSuccess
	created.DomainsApplied = 50
	created.CompletedAt = &completedAt
	created.DurationSeconds = 1.5

	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSuccess, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	list, err := repo.ListByClient(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[domain.SyncStatusSuccess])
}
