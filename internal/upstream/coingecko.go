package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mselser95/quote-proxy/pkg/types"
	"go.uber.org/zap"
)

// CoinGeckoClient is an HTTP client for the CoinGecko API. Each call may
// carry a proxy resolved by the failover policy; the transport is built per
// request so proxied and direct calls never share connection pools.
type CoinGeckoClient struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko API client.
func NewCoinGeckoClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &CoinGeckoClient{
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

// CoinsList fetches the full coin catalog: [{id, symbol, name}, ...].
func (c *CoinGeckoClient) CoinsList(ctx context.Context, proxy *url.URL) ([]byte, error) {
	return c.do(ctx, c.baseURL+"/coins/list", proxy)
}

// SupportedCurrencies fetches the list of quote currencies the provider supports.
func (c *CoinGeckoClient) SupportedCurrencies(ctx context.Context, proxy *url.URL) ([]byte, error) {
	return c.do(ctx, c.baseURL+"/simple/supported_vs_currencies", proxy)
}

// SimplePrice fetches the price and 24h change for one coin in one currency.
// The response is keyed by coin id: {"<id>": {"<cur>": p, "<cur>_24h_change": pct}}.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, proxy *url.URL, coinID, currency string) ([]byte, error) {
	params := url.Values{}
	params.Set("ids", coinID)
	params.Set("vs_currencies", currency)
	params.Set("include_24hr_change", "true")

	return c.do(ctx, fmt.Sprintf("%s/simple/price?%s", c.baseURL, params.Encode()), proxy)
}

// CoinsMarkets fetches one 250-entry page of coins ordered by market cap,
// used by the catalog sync job.
func (c *CoinGeckoClient) CoinsMarkets(ctx context.Context, proxy *url.URL, page int) ([]byte, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("price_change_percentage", "24h")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", "250")
	params.Set("page", strconv.Itoa(page))

	return c.do(ctx, fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode()), proxy)
}

// NFTList fetches NFT collections on the given chain ordered by 24h volume.
func (c *CoinGeckoClient) NFTList(ctx context.Context, proxy *url.URL, chain string) ([]byte, error) {
	params := url.Values{}
	params.Set("order", "h24_volume_native_desc")
	params.Set("asset_platform_id", chain)

	return c.do(ctx, fmt.Sprintf("%s/nfts/list?%s", c.baseURL, params.Encode()), proxy)
}

// NFTCollection fetches a single NFT collection by slug, including its floor price.
func (c *CoinGeckoClient) NFTCollection(ctx context.Context, proxy *url.URL, slug string) ([]byte, error) {
	return c.do(ctx, fmt.Sprintf("%s/nfts/%s", c.baseURL, url.PathEscape(slug)), proxy)
}

func (c *CoinGeckoClient) do(ctx context.Context, requestURL string, proxy *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "quote-proxy/1.0")

	httpClient := &http.Client{Timeout: c.timeout}
	if proxy != nil {
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
		c.logger.Debug("using-proxy-for-request", zap.String("url", requestURL))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &types.UpstreamError{Provider: "coingecko", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.UpstreamError{Provider: "coingecko", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamError{Provider: "coingecko", Err: err}
	}

	return body, nil
}
