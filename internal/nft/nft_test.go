package nft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mselser95/quote-proxy/internal/gate"
	"github.com/mselser95/quote-proxy/internal/proxypolicy"
	"github.com/mselser95/quote-proxy/internal/upstream"
	"github.com/mselser95/quote-proxy/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T, mem *store.MemoryStore) *upstream.Fetcher {
	t.Helper()

	g := gate.New(&gate.Config{
		Store:       mem,
		Name:        "nft-test-gate",
		MaxRequests: 100,
		Window:      time.Minute,
		Logger:      zap.NewNop(),
	})

	policy, err := proxypolicy.New(&proxypolicy.Config{
		Store:  mem,
		Gate:   g,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return upstream.NewFetcher(&upstream.FetcherConfig{
		Store:  mem,
		Gate:   g,
		Policy: policy,
		Logger: zap.NewNop(),
	})
}

func TestETHService_FloorPrice(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/nfts/cool-cats", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"cool-cats","floor_price":{"native_currency":2.85,"usd":9000}}`))
	}))
	defer srv.Close()

	mem := store.NewMemoryStore()
	svc := NewETHService(&ETHConfig{
		Store:   mem,
		Fetcher: newTestFetcher(t, mem),
		Client:  upstream.NewCoinGeckoClient(srv.URL, 5*time.Second, zap.NewNop()),
		Logger:  zap.NewNop(),
	})
	ctx := context.Background()

	floor, cached, err := svc.FloorPrice(ctx, "cool-cats")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "2.85", floor)

	again, cached, err := svc.FloorPrice(ctx, "cool-cats")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, floor, again)
	assert.Equal(t, int64(1), calls.Load(), "second lookup must come from cache")
}

func TestETHService_TopProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfts/list", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "asset_platform_id=ethereum")
		_, _ = w.Write([]byte(`[{"id":"cool-cats","name":"Cool Cats"},{"id":"doodles","name":"Doodles"}]`))
	}))
	defer srv.Close()

	mem := store.NewMemoryStore()
	svc := NewETHService(&ETHConfig{
		Store:   mem,
		Fetcher: newTestFetcher(t, mem),
		Client:  upstream.NewCoinGeckoClient(srv.URL, 5*time.Second, zap.NewNop()),
		Logger:  zap.NewNop(),
	})
	ctx := context.Background()

	projects, cached, err := svc.TopProjects(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, projects, 2)
	assert.Equal(t, "Cool Cats", projects[0].Name)
	assert.Equal(t, "cool-cats", projects[0].Slug)

	projects, cached, err = svc.TopProjects(ctx)
	require.NoError(t, err)
	assert.True(t, cached, "mapped ranking must be served from cache")
	require.Len(t, projects, 2)
}

func TestCardanoService_FloorPriceConvertsLovelace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"floor_price": 45000000}`))
	}))
	defer srv.Close()

	mem := store.NewMemoryStore()
	svc := NewCardanoService(&CardanoConfig{
		Store:  mem,
		Client: upstream.NewOpenCNFTClient(srv.URL, 5*time.Second, zap.NewNop()),
		Logger: zap.NewNop(),
	})

	floor, cached, err := svc.FloorPrice(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "45", floor, "45,000,000 lovelace is 45 ADA")
}

func TestCardanoService_TopProjectsLimitsToTen(t *testing.T) {
	body := `{"ranking":[`
	for i := 0; i < 15; i++ {
		if i > 0 {
			body += ","
		}
		body += `{"name":"P` + string(rune('A'+i)) + `","policies":["pol` + string(rune('a'+i)) + `"]}`
	}
	body += `]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	mem := store.NewMemoryStore()
	svc := NewCardanoService(&CardanoConfig{
		Store:  mem,
		Client: upstream.NewOpenCNFTClient(srv.URL, 5*time.Second, zap.NewNop()),
		Logger: zap.NewNop(),
	})

	projects, cached, err := svc.TopProjects(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, projects, 10)
	assert.Equal(t, "PA", projects[0].Name)
	assert.Equal(t, "pola", projects[0].Policy)
}
