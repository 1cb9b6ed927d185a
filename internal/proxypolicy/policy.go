package proxypolicy

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/mselser95/quote-proxy/internal/gate"
	"github.com/mselser95/quote-proxy/pkg/store"
	"go.uber.org/zap"
)

const flagKey = "coingecko:use-proxy"

// Policy decides whether an outbound upstream call should carry the HTTP
// proxy, based on a store-backed "use-proxy" flag shared by all replicas.
// The flag is a temporary penalty window: it auto-reverts to direct once its
// TTL elapses, so success never needs to clear it explicitly.
type Policy struct {
	store      store.Store
	gate       *gate.Gate
	proxyURL   *url.URL // nil when no proxy is configured
	force      bool     // global force flag from configuration
	flagTTL    time.Duration
	penaltyTTL time.Duration
	logger     *zap.Logger
}

// Config holds proxy policy configuration.
type Config struct {
	Store      store.Store
	Gate       *gate.Gate
	ProxyURL   string // empty disables the proxy entirely
	Force      bool
	FlagTTL    time.Duration
	PenaltyTTL time.Duration
	Logger     *zap.Logger
}

// New creates a new proxy failover policy.
func New(cfg *Config) (*Policy, error) {
	var proxyURL *url.URL
	if cfg.ProxyURL != "" {
		parsed, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		proxyURL = parsed
	}

	flagTTL := cfg.FlagTTL
	if flagTTL <= 0 {
		flagTTL = time.Hour
	}

	penaltyTTL := cfg.PenaltyTTL
	if penaltyTTL <= 0 {
		penaltyTTL = time.Minute
	}

	return &Policy{
		store:      cfg.Store,
		gate:       cfg.Gate,
		proxyURL:   proxyURL,
		force:      cfg.Force,
		flagTTL:    flagTTL,
		penaltyTTL: penaltyTTL,
		logger:     cfg.Logger,
	}, nil
}

// Resolve returns the proxy to attach to the next request, or nil for the
// direct path. force is the per-request override, typically set when the
// rate gate denied the direct path.
func (p *Policy) Resolve(ctx context.Context, force bool) *url.URL {
	if p.proxyURL == nil {
		return nil
	}

	if force || p.force {
		ResolvedProxiedTotal.Inc()
		return p.proxyURL
	}

	flag, err := p.store.Get(ctx, flagKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		p.logger.Warn("proxy-flag-read-failed", zap.Error(err))
	}

	if flag == "true" {
		ResolvedProxiedTotal.Inc()
		return p.proxyURL
	}

	ResolvedDirectTotal.Inc()
	return nil
}

// OnSuccess is the success hook for a completed upstream call. Direct
// successes need no state change: the proxy flag simply expires on its own.
func (p *Policy) OnSuccess(ctx context.Context, usedProxy bool) {
	if usedProxy {
		p.logger.Debug("proxied-request-succeeded")
	}
}

// OnFailure is the failure hook for an upstream call. A failed direct call
// turns the proxy flag on for its TTL and slams the rate-gate counter shut
// for a short penalty window, so the next callers prefer the proxy path
// immediately. Failures of already-proxied calls change nothing.
//
// The hook only updates state; the underlying error stays with the caller.
func (p *Policy) OnFailure(ctx context.Context, usedProxy bool) {
	if usedProxy {
		return
	}

	flag, err := p.store.Get(ctx, flagKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		p.logger.Warn("proxy-flag-read-failed", zap.Error(err))
	}

	// Avoid refreshing the TTL on every consecutive failure.
	if flag != "true" {
		err = p.store.SetWithTTL(ctx, flagKey, "true", p.flagTTL)
		if err != nil {
			p.logger.Warn("proxy-flag-write-failed", zap.Error(err))
		} else {
			ProxyEnabledTotal.Inc()
			p.logger.Info("proxy-enabled",
				zap.Duration("flag-ttl", p.flagTTL))
		}
	}

	if p.gate != nil {
		p.gate.Penalize(ctx, p.penaltyTTL)
	}
}
