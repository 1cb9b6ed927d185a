package upstream

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/mselser95/quote-proxy/internal/gate"
	"github.com/mselser95/quote-proxy/internal/proxypolicy"
	"github.com/mselser95/quote-proxy/pkg/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FetchFunc performs one upstream call with the resolved proxy (nil for the
// direct path).
type FetchFunc func(ctx context.Context, proxy *url.URL) ([]byte, error)

// Fetcher orchestrates every rate-limited upstream call: cache lookup, rate
// gate decision, proxy resolution, in-process pacing, the call itself, and
// the success/failure hooks of the proxy policy.
type Fetcher struct {
	store  store.Store
	gate   *gate.Gate
	policy *proxypolicy.Policy
	pacer  *rate.Limiter
	logger *zap.Logger
}

// FetcherConfig holds fetcher configuration.
type FetcherConfig struct {
	Store  store.Store
	Gate   *gate.Gate
	Policy *proxypolicy.Policy
	// PacingInterval spaces consecutive upstream calls within this process,
	// independent of the distributed gate. Zero disables pacing.
	PacingInterval time.Duration
	Logger         *zap.Logger
}

// NewFetcher creates a new fetcher.
func NewFetcher(cfg *FetcherConfig) *Fetcher {
	pacer := rate.NewLimiter(rate.Inf, 1)
	if cfg.PacingInterval > 0 {
		pacer = rate.NewLimiter(rate.Every(cfg.PacingInterval), 1)
	}

	return &Fetcher{
		store:  cfg.Store,
		gate:   cfg.Gate,
		policy: cfg.Policy,
		pacer:  pacer,
		logger: cfg.Logger,
	}
}

// Do runs the cache-aside protocol for one upstream operation: return the
// cached payload when present, otherwise call upstream through the gate and
// proxy policy and store the result with ttl. The cached flag tells the
// caller which path served the payload.
//
// Cache failures never fail the operation: a broken read counts as a miss
// and a broken write is logged and dropped.
func (f *Fetcher) Do(ctx context.Context, key string, ttl time.Duration, fn FetchFunc) (payload []byte, cached bool, err error) {
	val, err := f.store.Get(ctx, key)
	if err == nil {
		CacheHitsTotal.Inc()
		return []byte(val), true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		CacheReadErrorsTotal.Inc()
		f.logger.Error("cache-read-failed",
			zap.String("key", key),
			zap.Error(err))
	}
	CacheMissesTotal.Inc()

	payload, err = f.Call(ctx, fn)
	if err != nil {
		return nil, false, err
	}

	f.StoreBestEffort(ctx, key, string(payload), ttl)
	return payload, false, nil
}

// Call performs one gated, proxied, paced upstream call without touching the
// cache. Used for operations whose results are cached elsewhere, such as the
// orchestrator's fully-formed quote strings.
func (f *Fetcher) Call(ctx context.Context, fn FetchFunc) ([]byte, error) {
	forceProxy := !f.gate.AllowDirect(ctx)
	proxy := f.policy.Resolve(ctx, forceProxy)

	err := f.pacer.Wait(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payload, err := fn(ctx, proxy)
	RequestDurationSeconds.Observe(time.Since(start).Seconds())
	RequestsTotal.Inc()

	if err != nil {
		RequestErrorsTotal.Inc()
		f.policy.OnFailure(ctx, proxy != nil)
		return nil, err
	}

	f.policy.OnSuccess(ctx, proxy != nil)
	return payload, nil
}

// StoreBestEffort writes a value to the shared cache as a fire-and-forget
// side effect: failures are logged and swallowed, never surfaced.
func (f *Fetcher) StoreBestEffort(ctx context.Context, key, value string, ttl time.Duration) {
	err := f.store.SetWithTTL(ctx, key, value, ttl)
	if err != nil {
		CacheWriteErrorsTotal.Inc()
		f.logger.Error("cache-write-failed",
			zap.String("key", key),
			zap.Error(err))
	}
}
