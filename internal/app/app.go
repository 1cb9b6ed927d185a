package app

import (
	"context"
	"sync"

	"github.com/mselser95/quote-proxy/internal/catalog"
	"github.com/mselser95/quote-proxy/internal/nft"
	"github.com/mselser95/quote-proxy/internal/quote"
	"github.com/mselser95/quote-proxy/pkg/cache"
	"github.com/mselser95/quote-proxy/pkg/config"
	"github.com/mselser95/quote-proxy/pkg/healthprobe"
	"github.com/mselser95/quote-proxy/pkg/httpserver"
	"github.com/mselser95/quote-proxy/pkg/store"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	sharedStore   store.Store
	redisStore    *store.RedisStore // nil when running on the in-memory fallback
	l1            cache.Cache
	quoteService  *quote.Service
	ethNFT        *nft.ETHService
	cardanoNFT    *nft.CardanoService
	catalogStore  *catalog.Store // nil unless the syncer is enabled
	syncer        *catalog.Syncer
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	// WithSyncer also runs the background catalog sync job in this process.
	WithSyncer bool
}
