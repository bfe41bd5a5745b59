package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/dao"
	"github.com/br10net/blocklist-sync-service/internal/dto"
	"github.com/br10net/blocklist-sync-service/pkg/code"
)

func TestDomainAddNormalizesAndRecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "  ADS.Example.COM.  "})
	require.NoError(t, err)
	assert.Equal(t, "ads.example.com", added.Domain)
	assert.True(t, added.IsActive)
	assert.Equal(t, "manual", added.Source)

	history, count, err := env.domains.History(ctx, &dto.DomainHistoryListRequest{Domain: "ads.example.com", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "added", history[0].Action)
	assert.Equal(t, "admin", history[0].PerformedBy)
}

func TestDomainAddRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"", "x", "no-dot", "-bad.example.com", "example.c"} {
		_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: name})
		assertCode(t, err, code.ErrorDomainInvalid)
	}
}

func TestDomainAddDuplicateActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "dup.example.com"})
	require.NoError(t, err)

	_, err = env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "DUP.example.com"})
	assertCode(t, err, code.ErrorDomainExist)

	// 冲突响应携带已存在记录
	got, ok := err.(*code.Code)
	require.True(t, ok)
	existing, ok := got.Data().(*dto.DomainDTO)
	require.True(t, ok)
	assert.Equal(t, "dup.example.com", existing.Domain)
	assert.True(t, existing.IsActive)
}

func TestDomainAddReactivatesInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "back.example.com"})
	require.NoError(t, err)
	require.NoError(t, env.domains.Remove(ctx, added.ID, "admin"))

	again, err := env.domains.Add(ctx, "operator", &dto.DomainAddRequest{Domain: "back.example.com", Notes: "seen again"})
	require.NoError(t, err)

	// 重新启用保留原记录 ID
	assert.Equal(t, added.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.Equal(t, "seen again", again.Notes)

	history, _, err := env.domains.History(ctx, &dto.DomainHistoryListRequest{Domain: "back.example.com", Page: 1, PageSize: 10})
	require.NoError(t, err)

	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.ElementsMatch(t, []string{"added", "removed", "activated"}, actions)
}

func TestDomainAddBulkCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "already.example.com"})
	require.NoError(t, err)

	result, err := env.domains.AddBulk(ctx, "admin", &dto.DomainBulkAddRequest{
		Domains: []string{
			"already.example.com", // 已存在
			"new-1.example.com",
			"NEW-1.example.com.", // 归一化后与上一条重复
			"new-2.example.com",
			"!!invalid!!",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Submitted)
	assert.Equal(t, int64(2), result.Added)
	// 已存在 1 条加批内重复 1 条
	assert.Equal(t, int64(2), result.Duplicated)
	assert.Equal(t, []string{"!!invalid!!"}, result.Invalid)

	// 只有真正写入的域名落历史，且历史行带真实 ID
	history, count, err := env.domains.History(ctx, &dto.DomainHistoryListRequest{Action: "added", Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	for _, h := range history {
		assert.NotZero(t, h.DomainID, "history for %s should reference the domain row", h.Domain)
	}
}

func TestDomainAddBulkCountsRepeatedNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.domains.AddBulk(ctx, "admin", &dto.DomainBulkAddRequest{
		Domains: []string{"a.example.com", "a.example.com", "b.example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Submitted)
	assert.Equal(t, int64(2), result.Added)
	assert.Equal(t, int64(1), result.Duplicated)
	assert.Empty(t, result.Invalid)

	count, err := env.domains.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Total)
}

func TestDomainSetActiveIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "toggle.example.com"})
	require.NoError(t, err)

	deactivated, err := env.domains.SetActive(ctx, added.ID, false, "admin")
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	// 状态未变化不落历史
	same, err := env.domains.SetActive(ctx, added.ID, false, "admin")
	require.NoError(t, err)
	assert.False(t, same.IsActive)

	_, count, err := env.domains.History(ctx, &dto.DomainHistoryListRequest{Domain: "toggle.example.com", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDomainCountAndActiveList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"b.example.com", "a.example.com", "c.example.com"} {
		_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: name})
		require.NoError(t, err)
	}
	added, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "d.example.com"})
	require.NoError(t, err)
	require.NoError(t, env.domains.Remove(ctx, added.ID, "admin"))

	count, err := env.domains.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count.Total)
	assert.Equal(t, int64(3), count.Active)
	assert.Equal(t, int64(1), count.Inactive)

	names, err := env.domains.ActiveList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.com", "b.example.com", "c.example.com"}, names)
}

func TestDomainExportFormats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"one.example.com", "two.example.com"} {
		_, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: name})
		require.NoError(t, err)
	}

	body, contentType, err := env.domains.Export(ctx, "txt", false)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)
	assert.Equal(t, "one.example.com\ntwo.example.com\n", string(body))

	body, contentType, err = env.domains.Export(ctx, "rpz", false)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)
	assert.Contains(t, string(body), "one.example.com CNAME .\n")
	assert.Contains(t, string(body), "two.example.com CNAME .\n")
	assert.True(t, strings.HasPrefix(string(body), ";"))

	body, contentType, err = env.domains.Export(ctx, "json", false)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, string(body), `"count":2`)
	assert.Contains(t, string(body), `"timestamp":`)

	body, _, err = env.domains.Export(ctx, "json", true)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"timestamp":`)

	_, _, err = env.domains.Export(ctx, "xml", false)
	assertCode(t, err, code.ErrorInvalidParams)
}

func TestDomainActiveListInvalidatedOnMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewWithClient(client, zap.NewNop())

	db, err := dao.NewDBEngine(dao.Database{Type: "sqlite", Path: ":memory:"}, "release")
	require.NoError(t, err)
	d := dao.New(db)
	require.NoError(t, d.Migrate())

	domains := NewDomainService(dao.NewDomainRepository(d), dao.NewHistoryRepository(d), c, zap.NewNop())
	ctx := context.Background()

	first, err := domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "one.example.com"})
	require.NoError(t, err)

	names, err := domains.ActiveList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one.example.com"}, names)
	// 列表已回填缓存
	assert.True(t, mr.Exists(cache.KeyActiveDomains))

	// TTL 未到期，变更也要立刻可见
	_, err = domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "two.example.com"})
	require.NoError(t, err)
	names, err = domains.ActiveList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one.example.com", "two.example.com"}, names)

	require.NoError(t, domains.Remove(ctx, first.ID, "admin"))
	names, err = domains.ActiveList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"two.example.com"}, names)
}

func TestDomainDeleteWritesHistoryFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added, err := env.domains.Add(ctx, "admin", &dto.DomainAddRequest{Domain: "gone.example.com"})
	require.NoError(t, err)

	require.NoError(t, env.domains.Delete(ctx, added.ID, "admin"))

	_, err = env.domains.Get(ctx, added.ID)
	assertCode(t, err, code.ErrorDomainNotFound)

	history, _, err := env.domains.History(ctx, &dto.DomainHistoryListRequest{Domain: "gone.example.com", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
