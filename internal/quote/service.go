package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/quote-proxy/internal/upstream"
	"github.com/mselser95/quote-proxy/pkg/cache"
	"github.com/mselser95/quote-proxy/pkg/store"
	"github.com/mselser95/quote-proxy/pkg/types"
	"go.uber.org/zap"
)

const (
	coinsListKey     = "coingecko:coins-list"
	currenciesKey    = "coingecko:supported-currencies"
	symbolIndexL1Key = "catalog:symbol-index"

	// PageSize is the fixed page size of the config listing.
	PageSize = 250
)

// Service resolves ticker quotes against the upstream provider, with a
// shortcut cache of fully-formed quote strings keyed by raw ticker name.
type Service struct {
	store      store.Store
	fetcher    *upstream.Fetcher
	gecko      *upstream.CoinGeckoClient
	l1         cache.Cache
	exceptions map[string]string
	quoteTTL   time.Duration
	catalogTTL time.Duration
	logger     *zap.Logger
}

// Config holds quote service configuration.
type Config struct {
	Store      store.Store
	Fetcher    *upstream.Fetcher
	Client     *upstream.CoinGeckoClient
	L1Cache    cache.Cache // optional, caches the decoded symbol index
	Exceptions map[string]string
	QuoteTTL   time.Duration
	CatalogTTL time.Duration
	Logger     *zap.Logger
}

// New creates a new quote service.
func New(cfg *Config) *Service {
	exceptions := cfg.Exceptions
	if exceptions == nil {
		exceptions = defaultExceptions
	}

	quoteTTL := cfg.QuoteTTL
	if quoteTTL <= 0 {
		quoteTTL = 5 * time.Second
	}

	catalogTTL := cfg.CatalogTTL
	if catalogTTL <= 0 {
		catalogTTL = 6 * time.Hour
	}

	return &Service{
		store:      cfg.Store,
		fetcher:    cfg.Fetcher,
		gecko:      cfg.Client,
		l1:         cfg.L1Cache,
		exceptions: exceptions,
		quoteTTL:   quoteTTL,
		catalogTTL: catalogTTL,
		logger:     cfg.Logger,
	}
}

// Resolve turns a ticker pair like "BTC:USD" into a "<price>;<change24h>"
// quote. The fully-formed quote is cached under the raw ticker name, so a
// hit bypasses identifier resolution entirely.
func (s *Service) Resolve(ctx context.Context, tickerName string) (types.Quote, error) {
	cached, err := s.store.Get(ctx, tickerName)
	if err == nil {
		QuoteCacheHitsTotal.Inc()
		return types.Quote{Value: cached, Cached: true}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("quote-cache-read-failed",
			zap.String("ticker", tickerName),
			zap.Error(err))
	}

	parts := strings.Split(tickerName, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return types.Quote{}, fmt.Errorf("%w: %q", types.ErrUnsupportedTicker, tickerName)
	}

	symbol := strings.ToLower(parts[0])
	currency := strings.ToLower(parts[1])

	coinID, err := s.resolveCoinID(ctx, symbol)
	if err != nil {
		return types.Quote{}, err
	}

	payload, err := s.fetcher.Call(ctx, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return s.gecko.SimplePrice(ctx, proxy, coinID, currency)
	})
	if err != nil {
		return types.Quote{}, fmt.Errorf("fetch price for %s: %w", tickerName, err)
	}

	value, err := formatQuote(payload, tickerName, coinID, currency)
	if err != nil {
		return types.Quote{}, err
	}

	s.fetcher.StoreBestEffort(ctx, tickerName, value, s.quoteTTL)
	QuotesResolvedTotal.Inc()

	return types.Quote{Value: value, Cached: false}, nil
}

// resolveCoinID maps a ticker symbol to the provider coin id, checking the
// exception map before the cached catalog.
func (s *Service) resolveCoinID(ctx context.Context, symbol string) (string, error) {
	if id, ok := s.exceptions[symbol]; ok {
		return id, nil
	}

	index, err := s.symbolIndex(ctx)
	if err != nil {
		return "", fmt.Errorf("load catalog: %w", err)
	}

	id, ok := index[symbol]
	if !ok {
		return "", fmt.Errorf("%w: unknown symbol %q", types.ErrUnsupportedTicker, symbol)
	}

	return id, nil
}

// symbolIndex returns the symbol→id index of the coin catalog. The decoded
// index is memoized in the L1 cache; the raw payload lives in the shared
// store with the catalog TTL. Concurrent misses may rebuild it redundantly,
// which is accepted duplicate work.
func (s *Service) symbolIndex(ctx context.Context) (map[string]string, error) {
	if s.l1 != nil {
		if v, ok := s.l1.Get(symbolIndexL1Key); ok {
			if index, ok := v.(map[string]string); ok {
				return index, nil
			}
		}
	}

	coins, err := s.CoinsList(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]string, len(coins))
	for _, c := range coins {
		symbol := strings.ToLower(c.Symbol)
		if _, exists := index[symbol]; !exists {
			index[symbol] = c.ID
		}
	}

	if s.l1 != nil {
		s.l1.Set(symbolIndexL1Key, index, s.catalogTTL)
	}

	return index, nil
}

// CoinsList returns the provider coin catalog via the cache-aside fetcher.
func (s *Service) CoinsList(ctx context.Context) ([]types.CatalogCoin, error) {
	payload, _, err := s.fetcher.Do(ctx, coinsListKey, s.catalogTTL, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return s.gecko.CoinsList(ctx, proxy)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch coins list: %w", err)
	}

	var coins []types.CatalogCoin
	err = json.Unmarshal(payload, &coins)
	if err != nil {
		return nil, fmt.Errorf("decode coins list: %w", err)
	}

	return coins, nil
}

// ProviderCurrencies returns the quote currencies the provider supports,
// via the cache-aside fetcher.
func (s *Service) ProviderCurrencies(ctx context.Context) ([]string, error) {
	payload, _, err := s.fetcher.Do(ctx, currenciesKey, s.catalogTTL, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return s.gecko.SupportedCurrencies(ctx, proxy)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch supported currencies: %w", err)
	}

	var currencies []string
	err = json.Unmarshal(payload, &currencies)
	if err != nil {
		return nil, fmt.Errorf("decode supported currencies: %w", err)
	}

	return currencies, nil
}

// ListConfig returns one page of uppercase coin symbols plus the supported
// currencies, with a fixed page size of 250.
func (s *Service) ListConfig(ctx context.Context, page int) (types.TickerConfig, error) {
	if page < 1 {
		page = 1
	}

	coins, err := s.CoinsList(ctx)
	if err != nil {
		return types.TickerConfig{}, err
	}

	start := (page - 1) * PageSize
	end := page * PageSize
	if start > len(coins) {
		start = len(coins)
	}
	if end > len(coins) {
		end = len(coins)
	}

	symbols := make([]string, 0, end-start)
	for _, c := range coins[start:end] {
		symbols = append(symbols, strings.ToUpper(c.Symbol))
	}

	currencies := make([]string, 0, len(supportedCurrencies))
	for _, c := range supportedCurrencies {
		currencies = append(currencies, strings.ToUpper(c))
	}

	return types.TickerConfig{
		Coins:      types.CoinPage{Data: symbols, Total: len(coins)},
		Currencies: currencies,
	}, nil
}

// GetCoin looks up a single coin by symbol, case-insensitively.
// Returns nil when the symbol is unknown.
func (s *Service) GetCoin(ctx context.Context, symbol string) (*types.Coin, error) {
	coins, err := s.CoinsList(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(symbol)
	for _, c := range coins {
		if strings.ToLower(c.Symbol) == lower {
			return &types.Coin{
				BaseID: c.ID,
				Base:   strings.ToUpper(c.Symbol),
			}, nil
		}
	}

	return nil, nil
}

// Currencies returns the static supported currency list, uppercased.
func (s *Service) Currencies() []string {
	out := make([]string, 0, len(supportedCurrencies))
	for _, c := range supportedCurrencies {
		out = append(out, strings.ToUpper(c))
	}
	return out
}

// formatQuote validates the simple-price payload and renders the
// "<price>;<change24h>" string, with the change rounded to 2 decimals.
func formatQuote(payload []byte, tickerName, coinID, currency string) (string, error) {
	var decoded map[string]map[string]float64
	err := json.Unmarshal(payload, &decoded)
	if err != nil {
		return "", fmt.Errorf("decode price payload: %w", err)
	}

	entry, ok := decoded[coinID]
	if !ok {
		return "", &types.ProviderError{Ticker: tickerName, CoinID: coinID, Currency: currency}
	}

	price, havePrice := entry[currency]
	change, haveChange := entry[currency+"_24h_change"]
	if !havePrice || !haveChange {
		return "", &types.ProviderError{Ticker: tickerName, CoinID: coinID, Currency: currency}
	}

	rounded := math.Round(change*100) / 100

	return strconv.FormatFloat(price, 'f', -1, 64) + ";" + strconv.FormatFloat(rounded, 'f', -1, 64), nil
}
