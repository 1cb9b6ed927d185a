package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mselser95/quote-proxy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCoinGeckoClient_SimplePrice(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":43000.12,"usd_24h_change":3.14159}}`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, 5*time.Second, zap.NewNop())

	body, err := c.SimplePrice(context.Background(), nil, "bitcoin", "usd")
	require.NoError(t, err)

	assert.Equal(t, "/simple/price", gotPath)
	assert.Contains(t, gotQuery, "ids=bitcoin")
	assert.Contains(t, gotQuery, "vs_currencies=usd")
	assert.Contains(t, gotQuery, "include_24hr_change=true")
	assert.Contains(t, string(body), "43000.12")
}

func TestCoinGeckoClient_CoinsMarketsPagination(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, 5*time.Second, zap.NewNop())

	_, err := c.CoinsMarkets(context.Background(), nil, 3)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "page=3")
	assert.Contains(t, gotQuery, "per_page=250")
	assert.Contains(t, gotQuery, "order=market_cap_desc")
}

func TestCoinGeckoClient_RateLimitedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, 5*time.Second, zap.NewNop())

	_, err := c.CoinsList(context.Background(), nil)
	require.Error(t, err)

	var ue *types.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.True(t, types.IsRateLimited(err))
}

func TestOpenCNFTClient_FloorPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/policy/abc123/floor_price", r.URL.Path)
		_, _ = w.Write([]byte(`{"floor_price": 45000000}`))
	}))
	defer srv.Close()

	c := NewOpenCNFTClient(srv.URL, 5*time.Second, zap.NewNop())

	floor, err := c.FloorPrice(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, float64(45000000), floor)
}

func TestOpenCNFTClient_TopRanked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rank", r.URL.Path)
		assert.Equal(t, "window=24h", r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"ranking":[{"name":"SpaceBudz","policies":["d5e6bf"]},{"name":"Clay Nation","policies":["40fa2a"]}]}`))
	}))
	defer srv.Close()

	c := NewOpenCNFTClient(srv.URL, 5*time.Second, zap.NewNop())

	ranking, err := c.TopRanked(context.Background())
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "SpaceBudz", ranking[0].Name)
	assert.Equal(t, []string{"d5e6bf"}, ranking[0].Policies)
}
