package proxypolicy

import (
	"context"
	"testing"
	"time"

	"github.com/mselser95/quote-proxy/internal/gate"
	"github.com/mselser95/quote-proxy/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPolicy(t *testing.T, mem *store.MemoryStore, proxyURL string, force bool, g *gate.Gate) *Policy {
	t.Helper()

	p, err := New(&Config{
		Store:      mem,
		Gate:       g,
		ProxyURL:   proxyURL,
		Force:      force,
		FlagTTL:    time.Hour,
		PenaltyTTL: time.Minute,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	return p
}

func TestPolicy_NoProxyConfigured(t *testing.T) {
	mem := store.NewMemoryStore()
	p := newTestPolicy(t, mem, "", false, nil)

	assert.Nil(t, p.Resolve(context.Background(), true), "unconfigured proxy always resolves direct")
}

func TestPolicy_ForceRequested(t *testing.T) {
	mem := store.NewMemoryStore()
	p := newTestPolicy(t, mem, "http://proxy.internal:3128", false, nil)

	proxy := p.Resolve(context.Background(), true)
	require.NotNil(t, proxy)
	assert.Equal(t, "proxy.internal:3128", proxy.Host)
}

func TestPolicy_GlobalForceFlag(t *testing.T) {
	mem := store.NewMemoryStore()
	p := newTestPolicy(t, mem, "http://proxy.internal:3128", true, nil)

	assert.NotNil(t, p.Resolve(context.Background(), false))
}

func TestPolicy_PersistedFlag(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	p := newTestPolicy(t, mem, "http://proxy.internal:3128", false, nil)

	assert.Nil(t, p.Resolve(ctx, false), "flag unset resolves direct")

	require.NoError(t, mem.SetWithTTL(ctx, flagKey, "true", time.Hour))
	assert.NotNil(t, p.Resolve(ctx, false), "persisted flag resolves proxied")
}

func TestPolicy_FlagExpiryRevertsToDirect(t *testing.T) {
	mem := store.NewMemoryStore()
	now := time.Now()
	mem.Now = func() time.Time { return now }

	ctx := context.Background()
	p := newTestPolicy(t, mem, "http://proxy.internal:3128", false, nil)

	p.OnFailure(ctx, false)
	require.NotNil(t, p.Resolve(ctx, false))

	now = now.Add(time.Hour + time.Second)
	assert.Nil(t, p.Resolve(ctx, false), "flag must auto-revert after its TTL")
}

func TestPolicy_OnFailureDirectSetsFlagAndPenalizesGate(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	g := gate.New(&gate.Config{
		Store:       mem,
		Name:        "test-gate",
		MaxRequests: 3,
		Window:      time.Minute,
		Logger:      zap.NewNop(),
	})
	p := newTestPolicy(t, mem, "http://proxy.internal:3128", false, g)

	require.True(t, g.AllowDirect(ctx), "gate starts open")

	p.OnFailure(ctx, false)

	flag, err := mem.Get(ctx, flagKey)
	require.NoError(t, err)
	assert.Equal(t, "true", flag)

	assert.False(t, g.AllowDirect(ctx), "very next gate check must deny direct within the penalty window")
}

func TestPolicy_OnFailureProxiedIsNoOp(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	p := newTestPolicy(t, mem, "http://proxy.internal:3128", false, nil)

	p.OnFailure(ctx, true)

	_, err := mem.Get(ctx, flagKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "proxied failures must not touch the flag")
}

func TestPolicy_ConsecutiveFailuresKeepOriginalTTL(t *testing.T) {
	mem := store.NewMemoryStore()
	now := time.Now()
	mem.Now = func() time.Time { return now }

	ctx := context.Background()
	p := newTestPolicy(t, mem, "http://proxy.internal:3128", false, nil)

	p.OnFailure(ctx, false)

	now = now.Add(30 * time.Minute)
	p.OnFailure(ctx, false)

	ttl, err := mem.TTL(ctx, flagKey)
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 30*time.Minute, "second failure must not refresh the flag TTL")
}
