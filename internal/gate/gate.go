package gate

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/mselser95/quote-proxy/pkg/store"
	"go.uber.org/zap"
)

// Gate is the distributed rate gate in front of the upstream provider.
// It counts requests issued within a sliding window across all service
// replicas and decides whether the next call may take the direct path.
//
// The counter is read-modify-written only while the distributed lock for the
// gate is held; a single unconditional overwrite (Penalize) is the one
// exception, acceptable because the counter is a coarse hint at that point.
type Gate struct {
	store       store.Store
	name        string
	maxRequests int
	window      time.Duration
	lockTTL     time.Duration
	logger      *zap.Logger
}

// Config holds rate gate configuration.
type Config struct {
	Store       store.Store
	Name        string // logical resource name, e.g. "coingecko-request-gate"
	MaxRequests int
	Window      time.Duration
	LockTTL     time.Duration // safety auto-release in case a holder dies
	Logger      *zap.Logger
}

// New creates a new rate gate.
func New(cfg *Config) *Gate {
	name := cfg.Name
	if name == "" {
		name = "coingecko-request-gate"
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 2500 * time.Millisecond
	}

	return &Gate{
		store:       cfg.Store,
		name:        name,
		maxRequests: cfg.MaxRequests,
		window:      cfg.Window,
		lockTTL:     lockTTL,
		logger:      cfg.Logger,
	}
}

func (g *Gate) counterKey() string {
	return g.name + ":count"
}

// AllowDirect reports whether the caller may hit the upstream directly.
// A denial means the caller should route through the proxy-marked path.
//
// Store and lock failures fail open: availability wins over strict counting.
func (g *Gate) AllowDirect(ctx context.Context) bool {
	unlock, err := g.store.Lock(ctx, g.name, g.lockTTL)
	if err != nil {
		LockFailuresTotal.Inc()
		g.logger.Warn("gate-lock-unavailable",
			zap.String("gate", g.name),
			zap.Error(err))
		return true
	}
	defer func() {
		unlockErr := unlock(ctx)
		if unlockErr != nil {
			g.logger.Warn("gate-unlock-failed",
				zap.String("gate", g.name),
				zap.Error(unlockErr))
		}
	}()

	count := g.readCount(ctx)
	if count >= g.maxRequests {
		DeniedTotal.Inc()
		g.logger.Debug("gate-denied-direct",
			zap.String("gate", g.name),
			zap.Int("count", count),
			zap.Int("max", g.maxRequests))
		return false
	}

	g.writeCount(ctx, count+1)
	AllowedTotal.Inc()
	return true
}

// Penalize forces the counter to its maximum for ttl, so the next checks
// within the penalty window deny the direct path immediately instead of
// discovering upstream failure one caller at a time. The window reopens by
// itself when the TTL lapses.
func (g *Gate) Penalize(ctx context.Context, ttl time.Duration) {
	unlock, err := g.store.Lock(ctx, g.name, g.lockTTL)
	if err == nil {
		defer func() { _ = unlock(ctx) }()
	}

	err = g.store.SetWithTTL(ctx, g.counterKey(), strconv.Itoa(g.maxRequests), ttl)
	if err != nil {
		g.logger.Warn("gate-penalty-write-failed",
			zap.String("gate", g.name),
			zap.Error(err))
		return
	}

	PenaltiesTotal.Inc()
	g.logger.Info("gate-penalized",
		zap.String("gate", g.name),
		zap.Duration("penalty-ttl", ttl))
}

// readCount reads the current window counter, treating absent or unreadable
// values as zero.
func (g *Gate) readCount(ctx context.Context) int {
	raw, err := g.store.Get(ctx, g.counterKey())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			g.logger.Warn("gate-counter-read-failed",
				zap.String("gate", g.name),
				zap.Error(err))
		}
		return 0
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		g.logger.Warn("gate-counter-malformed",
			zap.String("gate", g.name),
			zap.String("raw", raw))
		return 0
	}

	return count
}

// writeCount persists the incremented counter. The remaining window TTL is
// preserved; a fresh window gets the full TTL.
func (g *Gate) writeCount(ctx context.Context, count int) {
	key := g.counterKey()

	ttl, err := g.store.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		ttl = g.window
	}

	err = g.store.SetWithTTL(ctx, key, strconv.Itoa(count), ttl)
	if err != nil {
		g.logger.Warn("gate-counter-write-failed",
			zap.String("gate", g.name),
			zap.Error(err))
	}
}
