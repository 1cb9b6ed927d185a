package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/quote-proxy/internal/upstream"
	"github.com/mselser95/quote-proxy/pkg/types"
	"go.uber.org/zap"
)

// Syncer periodically refreshes the Postgres catalog from the provider's
// market listing: upserts the current coins and currencies, then deactivates
// entries that disappeared upstream.
type Syncer struct {
	store      *Store
	fetcher    *upstream.Fetcher
	gecko      *upstream.CoinGeckoClient
	currencies []string // static list, intersected with provider support
	pages      int
	interval   time.Duration
	logger     *zap.Logger
}

// SyncerConfig holds catalog syncer configuration.
type SyncerConfig struct {
	Store      *Store
	Fetcher    *upstream.Fetcher
	Client     *upstream.CoinGeckoClient
	Currencies []string
	Pages      int
	Interval   time.Duration
	Logger     *zap.Logger
}

// NewSyncer creates a new catalog syncer.
func NewSyncer(cfg *SyncerConfig) *Syncer {
	pages := cfg.Pages
	if pages <= 0 {
		pages = 4
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	return &Syncer{
		store:      cfg.Store,
		fetcher:    cfg.Fetcher,
		gecko:      cfg.Client,
		currencies: cfg.Currencies,
		pages:      pages,
		interval:   interval,
		logger:     cfg.Logger,
	}
}

// Run syncs once immediately, then on every interval tick until ctx is done.
func (s *Syncer) Run(ctx context.Context) error {
	s.logger.Info("catalog-syncer-starting",
		zap.Duration("interval", s.interval),
		zap.Int("pages", s.pages))

	err := s.SyncOnce(ctx)
	if err != nil {
		SyncErrorsTotal.Inc()
		s.logger.Error("initial-catalog-sync-failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("catalog-syncer-stopping")
			return ctx.Err()
		case <-ticker.C:
			err := s.SyncOnce(ctx)
			if err != nil {
				SyncErrorsTotal.Inc()
				s.logger.Error("catalog-sync-failed", zap.Error(err))
			}
		}
	}
}

// SyncOnce performs a full catalog refresh.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		SyncDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	coins, err := s.fetchCoins(ctx)
	if err != nil {
		return fmt.Errorf("fetch coins: %w", err)
	}

	currencies, err := s.supportedCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("fetch currencies: %w", err)
	}

	baseIDs := make([]string, 0, len(coins))
	for _, c := range coins {
		err := s.store.UpsertCoin(ctx, c.ID, strings.ToUpper(c.Symbol))
		if err != nil {
			s.logger.Error("coin-upsert-failed",
				zap.String("base-id", c.ID),
				zap.Error(err))
			continue
		}
		baseIDs = append(baseIDs, c.ID)
		CoinsUpsertedTotal.Inc()
	}

	deactivated, err := s.store.DeactivateCoinsExcept(ctx, baseIDs)
	if err != nil {
		return fmt.Errorf("deactivate coins: %w", err)
	}

	for _, name := range currencies {
		err := s.store.UpsertCurrency(ctx, name)
		if err != nil {
			s.logger.Error("currency-upsert-failed",
				zap.String("name", name),
				zap.Error(err))
		}
	}

	_, err = s.store.DeactivateCurrenciesExcept(ctx, currencies)
	if err != nil {
		return fmt.Errorf("deactivate currencies: %w", err)
	}

	SyncRunsTotal.Inc()
	s.logger.Info("catalog-sync-complete",
		zap.Int("coins", len(baseIDs)),
		zap.Int("currencies", len(currencies)),
		zap.Int64("coins-deactivated", deactivated),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// fetchCoins pulls the configured number of market pages, skipping provider
// ids that would break the "<price>;<change>" and "BASE:CURRENCY" encodings.
func (s *Syncer) fetchCoins(ctx context.Context) ([]types.MarketCoin, error) {
	var coins []types.MarketCoin

	for page := 1; page <= s.pages; page++ {
		payload, err := s.fetcher.Call(ctx, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
			return s.gecko.CoinsMarkets(ctx, proxy, page)
		})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		var pageCoins []types.MarketCoin
		err = json.Unmarshal(payload, &pageCoins)
		if err != nil {
			return nil, fmt.Errorf("decode page %d: %w", page, err)
		}

		for _, c := range pageCoins {
			if strings.ContainsAny(c.ID, ":;") {
				continue
			}
			coins = append(coins, c)
		}
	}

	return coins, nil
}

// supportedCurrencies intersects the static currency list with what the
// provider actually supports, uppercased.
func (s *Syncer) supportedCurrencies(ctx context.Context) ([]string, error) {
	payload, err := s.fetcher.Call(ctx, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return s.gecko.SupportedCurrencies(ctx, proxy)
	})
	if err != nil {
		return nil, err
	}

	var provider []string
	err = json.Unmarshal(payload, &provider)
	if err != nil {
		return nil, fmt.Errorf("decode supported currencies: %w", err)
	}

	supported := make(map[string]bool, len(provider))
	for _, c := range provider {
		supported[strings.ToLower(c)] = true
	}

	var out []string
	for _, c := range s.currencies {
		if supported[strings.ToLower(c)] {
			out = append(out, strings.ToUpper(c))
		}
	}

	return out, nil
}
