package upstream

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/mselser95/quote-proxy/internal/gate"
	"github.com/mselser95/quote-proxy/internal/proxypolicy"
	"github.com/mselser95/quote-proxy/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// faultyStore wraps a MemoryStore and fails selected operations.
type faultyStore struct {
	*store.MemoryStore
	failGet bool
	failSet bool
}

var errStoreDown = errors.New("store unreachable")

func (f *faultyStore) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errStoreDown
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *faultyStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.failSet {
		return errStoreDown
	}
	return f.MemoryStore.SetWithTTL(ctx, key, value, ttl)
}

func newTestFetcher(t *testing.T, s store.Store) (*Fetcher, *store.MemoryStore) {
	t.Helper()

	mem, _ := s.(*store.MemoryStore)

	g := gate.New(&gate.Config{
		Store:       s,
		Name:        "fetch-gate",
		MaxRequests: 100,
		Window:      time.Minute,
		Logger:      zap.NewNop(),
	})

	policy, err := proxypolicy.New(&proxypolicy.Config{
		Store:  s,
		Gate:   g,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return NewFetcher(&FetcherConfig{
		Store:  s,
		Gate:   g,
		Policy: policy,
		Logger: zap.NewNop(),
	}), mem
}

func TestFetcher_CacheHitSkipsUpstream(t *testing.T) {
	mem := store.NewMemoryStore()
	f, _ := newTestFetcher(t, mem)
	ctx := context.Background()

	require.NoError(t, mem.SetWithTTL(ctx, "op:key", "cached-payload", time.Minute))

	calls := 0
	payload, cached, err := f.Do(ctx, "op:key", time.Minute, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		calls++
		return []byte("fresh"), nil
	})

	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "cached-payload", string(payload))
	assert.Zero(t, calls, "cache hit must not reach upstream")
}

func TestFetcher_MissFetchesAndStores(t *testing.T) {
	mem := store.NewMemoryStore()
	f, _ := newTestFetcher(t, mem)
	ctx := context.Background()

	payload, cached, err := f.Do(ctx, "op:key", time.Minute, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return []byte("fresh"), nil
	})

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "fresh", string(payload))

	stored, err := mem.Get(ctx, "op:key")
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored)
}

func TestFetcher_CacheReadErrorTreatedAsMiss(t *testing.T) {
	fs := &faultyStore{MemoryStore: store.NewMemoryStore(), failGet: true}
	f, _ := newTestFetcher(t, fs)
	ctx := context.Background()

	payload, cached, err := f.Do(ctx, "op:key", time.Minute, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return []byte("fresh"), nil
	})

	require.NoError(t, err, "a broken cache read must not fail the call")
	assert.False(t, cached)
	assert.Equal(t, "fresh", string(payload))
}

func TestFetcher_CacheWriteErrorIsDropped(t *testing.T) {
	fs := &faultyStore{MemoryStore: store.NewMemoryStore(), failSet: true}
	f, _ := newTestFetcher(t, fs)
	ctx := context.Background()

	payload, cached, err := f.Do(ctx, "op:key", time.Minute, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return []byte("fresh"), nil
	})

	require.NoError(t, err, "a dropped cache write must not fail the call")
	assert.False(t, cached)
	assert.Equal(t, "fresh", string(payload))
}

func TestFetcher_UpstreamFailurePropagatesAfterPenalty(t *testing.T) {
	mem := store.NewMemoryStore()

	g := gate.New(&gate.Config{
		Store:       mem,
		Name:        "fetch-gate",
		MaxRequests: 100,
		Window:      time.Minute,
		Logger:      zap.NewNop(),
	})
	policy, err := proxypolicy.New(&proxypolicy.Config{
		Store:      mem,
		Gate:       g,
		ProxyURL:   "http://proxy.internal:3128",
		PenaltyTTL: time.Minute,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)

	f := NewFetcher(&FetcherConfig{
		Store:  mem,
		Gate:   g,
		Policy: policy,
		Logger: zap.NewNop(),
	})
	ctx := context.Background()

	upstreamErr := errors.New("connection reset")
	_, _, err = f.Do(ctx, "op:key", time.Minute, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return nil, upstreamErr
	})

	require.ErrorIs(t, err, upstreamErr, "upstream failure must reach the caller")

	flag, err := mem.Get(ctx, "coingecko:use-proxy")
	require.NoError(t, err)
	assert.Equal(t, "true", flag, "failure hook must run before the error propagates")

	assert.False(t, g.AllowDirect(ctx), "gate must be penalized after a direct failure")
}
