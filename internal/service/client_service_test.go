package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/br10net/blocklist-sync-service/internal/domain"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/pkg/code"
)

func TestClientCreateReturnsKeyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{
		Name:        "resolver-1",
		Description: "edge resolver",
		Metadata:    map[string]any{"region": "eu", "push_endpoint": "http://10.0.0.53/push"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.APIKey)
	assert.GreaterOrEqual(t, len(created.APIKey), 40)
	assert.Equal(t, "offline", created.Status)

	// 普通查询不返回 API Key
	got, err := env.clients.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "resolver-1", got.Name)
	assert.Equal(t, "eu", got.Metadata["region"])

	_, err = env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "resolver-1"})
	assertCode(t, err, code.ErrorClientNameExist)
}

func TestClientAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "auth-client"})
	require.NoError(t, err)

	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)
	assert.Equal(t, created.ID, client.ID)

	_, err = env.clients.Authenticate(ctx, "")
	assertCode(t, err, code.ErrorNotAPIKey)

	_, err = env.clients.Authenticate(ctx, "bogus-key")
	assertCode(t, err, code.ErrorInvalidAPIKey)

	disabled := false
	_, err = env.clients.Update(ctx, created.ID, &dto.ClientUpdateRequest{IsActive: &disabled})
	require.NoError(t, err)

	_, err = env.clients.Authenticate(ctx, created.APIKey)
	assertCode(t, err, code.ErrorClientDisabled)
}

func TestClientRotateKeyInvalidatesOldKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "rotate-client"})
	require.NoError(t, err)

	rotated, err := env.clients.RotateKey(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, created.APIKey, rotated.APIKey)

	_, err = env.clients.Authenticate(ctx, created.APIKey)
	assertCode(t, err, code.ErrorInvalidAPIKey)

	client, err := env.clients.Authenticate(ctx, rotated.APIKey)
	require.NoError(t, err)
	assert.Equal(t, created.ID, client.ID)
}

func TestClientHeartbeatPreservesSyncing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "hb-client"})
	require.NoError(t, err)

	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)

	require.NoError(t, env.clients.Heartbeat(ctx, client))
	got, err := env.clientRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusOnline, got.Status)
	assert.NotNil(t, got.LastHeartbeat)

	// 同步中的客户端心跳不改状态
	require.NoError(t, env.clientRepo.UpdateStatus(ctx, created.ID, domain.ClientStatusSyncing))
	client, err = env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)
	require.NoError(t, env.clients.Heartbeat(ctx, client))

	got, err = env.clientRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusSyncing, got.Status)
}

func TestClientStatusView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"s1.example.com", "s2.example.com"} {
		_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: name})
		require.NoError(t, err)
	}

	created, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "status-client"})
	require.NoError(t, err)
	client, err := env.clients.Authenticate(ctx, created.APIKey)
	require.NoError(t, err)

	status, err := env.clients.Status(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.ActiveDomains)
	assert.False(t, status.InSync)

	require.NoError(t, env.clientRepo.UpdateSyncResult(ctx, created.ID, time.Now(), 2))
	status, err = env.clients.Status(ctx, client)
	require.NoError(t, err)
	assert.True(t, status.InSync)
}

func TestClientStaleAndOfflineReportsArePureReads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fresh, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "fresh"})
	require.NoError(t, err)
	stale, err := env.clients.Create(ctx, &dto.ClientCreateRequest{Name: "stale"})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, env.clientRepo.UpdateSyncResult(ctx, fresh.ID, now, 1))
	require.NoError(t, env.clientRepo.UpdateHeartbeat(ctx, fresh.ID, domain.ClientStatusOnline, now))
	require.NoError(t, env.clientRepo.UpdateSyncResult(ctx, stale.ID, now.Add(-48*time.Hour), 1))
	require.NoError(t, env.clientRepo.UpdateHeartbeat(ctx, stale.ID, domain.ClientStatusOnline, now.Add(-2*time.Hour)))

	staleList, err := env.clients.StaleClients(ctx)
	require.NoError(t, err)
	require.Len(t, staleList, 1)
	assert.Equal(t, "stale", staleList[0].Name)

	offlineList, err := env.clients.OfflineClients(ctx)
	require.NoError(t, err)
	require.Len(t, offlineList, 1)
	assert.Equal(t, "stale", offlineList[0].Name)

	// 报表不回写状态
	got, err := env.clientRepo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusOnline, got.Status)
}
