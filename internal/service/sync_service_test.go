package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/pkg/code"
)

func TestSyncStartAndComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "sync.example.com"})
	require.NoError(t, err)

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "sync-client"})
	require.NoError(t, err)
	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)

	started, err := env.syncs.Start(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, "pending", started.Status)
	assert.Equal(t, int64(1), started.DomainsSent)

	got, err := env.clientRepo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusSyncing, got.Status)

	completed, err := env.syncs.Complete(ctx, client, &dto.SyncCompleteRequest{
		SyncID:         started.ID,
		Status:         "success",
		DomainsApplied: 1,
		Message:        "applied",
	})
	require.NoError(t, err)
	assert.Equal(t, "success", completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.GreaterOrEqual(t, completed.DurationSeconds, 0.0)

	got, err = env.clientRepo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusOnline, got.Status)
	assert.NotNil(t, got.LastSync)
	assert.Equal(t, int64(1), got.DomainsCount)
}

func TestSyncCompleteOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "owner"})
	require.NoError(t, err)
	other, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "other"})
	require.NoError(t, err)

	ownerClient, err := env.clients.Authenticate(ctx, owner.APIKey)
	require.NoError(t, err)
	otherClient, err := env.clients.Authenticate(ctx, other.APIKey)
	require.NoError(t, err)

	started, err := env.syncs.Start(ctx, ownerClient)
	require.NoError(t, err)

	// 别的客户端不能上报他人的同步
	_, err = env.syncs.Complete(ctx, otherClient, &dto.SyncCompleteRequest{SyncID: started.ID, Status: "success"})
	assertCode(t, err, code.ErrorSyncOwnership)

	_, err = env.syncs.Complete(ctx, ownerClient, &dto.SyncCompleteRequest{SyncID: 99999, Status: "success"})
	assertCode(t, err, code.ErrorSyncNotFound)
}

func TestSyncCompleteForwardOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "fwd-client"})
	require.NoError(t, err)
	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)

	started, err := env.syncs.Start(ctx, client)
	require.NoError(t, err)

	_, err = env.syncs.Complete(ctx, client, &dto.SyncCompleteRequest{SyncID: started.ID, Status: "failed", ErrorDetails: "disk full"})
	require.NoError(t, err)

	// 终态不可再变
	_, err = env.syncs.Complete(ctx, client, &dto.SyncCompleteRequest{SyncID: started.ID, Status: "success"})
	assertCode(t, err, code.ErrorSyncFinalized)

	got, err := env.clientRepo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusError, got.Status)
	// 失败上报同样刷新同步结果列，客户端不会被一直判定为待同步
	assert.NotNil(t, got.LastSync)
}

func TestSyncCompletePartialMarksClientError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "partial-client"})
	require.NoError(t, err)
	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)

	started, err := env.syncs.Start(ctx, client)
	require.NoError(t, err)

	completed, err := env.syncs.Complete(ctx, client, &dto.SyncCompleteRequest{
		SyncID:         started.ID,
		Status:         "partial",
		DomainsApplied: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "partial", completed.Status)

	got, err := env.clientRepo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusError, got.Status)
	assert.NotNil(t, got.LastSync)
	assert.Equal(t, int64(3), got.DomainsCount)
}

func TestSyncCompleteClientReportedDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "duration-client"})
	require.NoError(t, err)
	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)

	started, err := env.syncs.Start(ctx, client)
	require.NoError(t, err)

	reported := 12.5
	completed, err := env.syncs.Complete(ctx, client, &dto.SyncCompleteRequest{
		SyncID:          started.ID,
		Status:          "success",
		DurationSeconds: &reported,
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, completed.DurationSeconds)
}

func TestPushToClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"p1.example.com", "p2.example.com"} {
		_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: name})
		require.NoError(t, err)
	}

	var gotSecret string
	var gotPayload PushPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Push-Secret")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"applied": 2}`))
	}))
	defer server.Close()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:     "push-client",
		Metadata: map[string]any{"push_endpoint": server.URL, "push_secret": "shared-secret"},
	})
	require.NoError(t, err)

	result, err := env.syncs.PushToClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", result.Outcome)
	assert.Equal(t, int64(2), result.Applied)
	assert.NotEmpty(t, result.RequestID)

	assert.Equal(t, "shared-secret", gotSecret)
	assert.Equal(t, 2, gotPayload.Count)
	assert.ElementsMatch(t, []string{"p1.example.com", "p2.example.com"}, gotPayload.Domains)
	assert.Equal(t, result.RequestID, gotPayload.RequestID)

	got, err := env.clientRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusOnline, got.Status)
	assert.Equal(t, int64(2), got.DomainsCount)
}

func TestPushToClientSecretFallsBackToAPIKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var gotSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Push-Secret")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:     "fallback-client",
		Metadata: map[string]any{"push_endpoint": server.URL},
	})
	require.NoError(t, err)

	result, err := env.syncs.PushToClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", result.Outcome)
	assert.Equal(t, created.APIKey, gotSecret)
}

func TestPushToClientWithoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "no-endpoint"})
	require.NoError(t, err)

	_, err = env.syncs.PushToClient(ctx, created.ID)
	assertCode(t, err, code.ErrorPushNoEndpoint)
}

func TestPushToClientFailureRecorded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:     "fail-client",
		Metadata: map[string]any{"push_endpoint": server.URL},
	})
	require.NoError(t, err)

	result, err := env.syncs.PushToClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", result.Outcome)
	assert.Contains(t, result.Detail, "500")

	history, _, err := env.syncs.History(ctx, created.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "failed", history[0].Status)

	got, err := env.clientRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusError, got.Status)
}

func TestPushToClientTimeoutMarked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:     "slow-push",
		Metadata: map[string]any{"push_endpoint": slow.URL},
	})
	require.NoError(t, err)

	syncs := NewSyncService(env.syncRepo, env.clientRepo, env.domains, cache.NewNoop(), env.pool,
		PushServiceConfig{Timeout: "50ms", HealthTimeout: "2s"}, zap.NewNop())

	result, err := syncs.PushToClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", result.Outcome)
	assert.Contains(t, result.Detail, "push timeout")

	history, _, err := syncs.History(ctx, created.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].ErrorDetails, "push timeout")
}

func TestPushToAllIsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "all.example.com"})
	require.NoError(t, err)

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"applied": 1}`))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	_, err = env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "ok", Metadata: map[string]any{"push_endpoint": good.URL}})
	require.NoError(t, err)
	_, err = env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "broken", Metadata: map[string]any{"push_endpoint": bad.URL}})
	require.NoError(t, err)
	_, err = env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "silent"})
	require.NoError(t, err)

	result, err := env.syncs.PushToAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Details, 3)
}

func TestCheckHealth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	healthy, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:     "healthy",
		Metadata: map[string]any{"health_endpoint": server.URL},
	})
	require.NoError(t, err)

	result, err := env.syncs.CheckHealth(ctx, healthy.ID)
	require.NoError(t, err)
	assert.True(t, result.Healthy)
	assert.Equal(t, "online", result.Status)
	assert.Equal(t, "ok", result.Detail)

	unreachable, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:     "unreachable",
		Metadata: map[string]any{"health_endpoint": "http://127.0.0.1:1/health"},
	})
	require.NoError(t, err)

	// 探测失败不报错，结果标记不健康
	result, err = env.syncs.CheckHealth(ctx, unreachable.ID)
	require.NoError(t, err)
	assert.False(t, result.Healthy)
	assert.Equal(t, "error", result.Status)
	assert.NotEmpty(t, result.Detail)

	none, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "no-health"})
	require.NoError(t, err)
	result, err = env.syncs.CheckHealth(ctx, none.ID)
	require.NoError(t, err)
	assert.False(t, result.Healthy)
	assert.Equal(t, "error", result.Status)
}

func TestCheckHealthTimeout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:     "slow",
		Metadata: map[string]any{"health_endpoint": slow.URL},
	})
	require.NoError(t, err)

	syncs := NewSyncService(env.syncRepo, env.clientRepo, env.domains, cache.NewNoop(), env.pool,
		PushServiceConfig{Timeout: "5s", HealthTimeout: "50ms"}, zap.NewNop())

	result, err := syncs.CheckHealth(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, result.Healthy)
	assert.Equal(t, "timeout", result.Status)
}

func TestGeneralStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "st.example.com"})
	require.NoError(t, err)

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "stats-client"})
	require.NoError(t, err)
	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)

	started, err := env.syncs.Start(ctx, client)
	require.NoError(t, err)
	_, err = env.syncs.Complete(ctx, client, &dto.SyncCompleteRequest{SyncID: started.ID, Status: "success", DomainsApplied: 1})
	require.NoError(t, err)

	stats, err := env.stats.General(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalDomains)
	assert.Equal(t, int64(1), stats.ActiveDomains)
	assert.Equal(t, int64(1), stats.TotalClients)
	assert.Equal(t, int64(1), stats.DomainsBySource["manual"])
	assert.Equal(t, int64(1), stats.ClientsByStatus["online"])
	assert.Equal(t, int64(1), stats.SyncsByStatus["success"])
	require.Len(t, stats.RecentSyncs, 1)
	assert.Equal(t, "success", stats.RecentSyncs[0].Status)
}
