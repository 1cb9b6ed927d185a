package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/quote-proxy/pkg/types"
	"go.uber.org/zap"
)

// OpenCNFTClient is an HTTP client for the OpenCNFT API serving Cardano NFT
// data. It is a separate provider with its own limits, so its calls do not
// pass through the CoinGecko rate gate or proxy policy.
type OpenCNFTClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenCNFTClient creates a new OpenCNFT API client.
func NewOpenCNFTClient(baseURL string, timeout time.Duration, logger *zap.Logger) *OpenCNFTClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &OpenCNFTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FloorPrice fetches the floor price for a minting policy, in lovelace.
func (c *OpenCNFTClient) FloorPrice(ctx context.Context, policy string) (float64, error) {
	body, err := c.do(ctx, fmt.Sprintf("%s/policy/%s/floor_price", c.baseURL, url.PathEscape(policy)))
	if err != nil {
		return 0, err
	}

	var payload struct {
		FloorPrice float64 `json:"floor_price"`
	}
	err = json.Unmarshal(body, &payload)
	if err != nil {
		return 0, fmt.Errorf("decode floor price: %w", err)
	}

	return payload.FloorPrice, nil
}

// RankedProject is one entry of the OpenCNFT 24h ranking.
type RankedProject struct {
	Name     string   `json:"name"`
	Policies []string `json:"policies"`
}

// TopRanked fetches the 24h volume ranking of Cardano NFT projects.
func (c *OpenCNFTClient) TopRanked(ctx context.Context) ([]RankedProject, error) {
	body, err := c.do(ctx, c.baseURL+"/rank?window=24h")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Ranking []RankedProject `json:"ranking"`
	}
	err = json.Unmarshal(body, &payload)
	if err != nil {
		return nil, fmt.Errorf("decode ranking: %w", err)
	}

	return payload.Ranking, nil
}

func (c *OpenCNFTClient) do(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "quote-proxy/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.UpstreamError{Provider: "opencnft", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.UpstreamError{Provider: "opencnft", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamError{Provider: "opencnft", Err: err}
	}

	return body, nil
}
