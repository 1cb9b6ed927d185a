package app

import (
	"context"
	"fmt"

	"github.com/mselser95/quote-proxy/internal/catalog"
	"github.com/mselser95/quote-proxy/internal/gate"
	"github.com/mselser95/quote-proxy/internal/nft"
	"github.com/mselser95/quote-proxy/internal/proxypolicy"
	"github.com/mselser95/quote-proxy/internal/quote"
	"github.com/mselser95/quote-proxy/internal/upstream"
	"github.com/mselser95/quote-proxy/pkg/cache"
	"github.com/mselser95/quote-proxy/pkg/config"
	"github.com/mselser95/quote-proxy/pkg/healthprobe"
	"github.com/mselser95/quote-proxy/pkg/httpserver"
	"github.com/mselser95/quote-proxy/pkg/store"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	sharedStore, redisStore := setupSharedStore(ctx, cfg, logger, healthChecker)

	l1, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	requestGate := gate.New(&gate.Config{
		Store:       sharedStore,
		MaxRequests: cfg.GateMaxRequests,
		Window:      cfg.GateWindow,
		LockTTL:     cfg.GateLockTTL,
		Logger:      logger,
	})

	policy, err := proxypolicy.New(&proxypolicy.Config{
		Store:      sharedStore,
		Gate:       requestGate,
		ProxyURL:   cfg.ProxyURL,
		Force:      cfg.ForceProxy,
		FlagTTL:    cfg.ProxyFlagTTL,
		PenaltyTTL: cfg.GatePenaltyTTL,
		Logger:     logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup proxy policy: %w", err)
	}

	fetcher := upstream.NewFetcher(&upstream.FetcherConfig{
		Store:          sharedStore,
		Gate:           requestGate,
		Policy:         policy,
		PacingInterval: cfg.PacingInterval,
		Logger:         logger,
	})

	gecko := upstream.NewCoinGeckoClient(cfg.CoingeckoBaseURL, cfg.UpstreamTimeout, logger)
	opencnft := upstream.NewOpenCNFTClient(cfg.OpencnftBaseURL, cfg.UpstreamTimeout, logger)

	exceptions, err := quote.LoadExceptions(cfg.ExceptionMapFile)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load ticker exceptions: %w", err)
	}

	quoteService := quote.New(&quote.Config{
		Store:      sharedStore,
		Fetcher:    fetcher,
		Client:     gecko,
		L1Cache:    l1,
		Exceptions: exceptions,
		QuoteTTL:   cfg.QuoteTTL,
		CatalogTTL: cfg.CatalogTTL,
		Logger:     logger,
	})

	ethNFT := nft.NewETHService(&nft.ETHConfig{
		Store:       sharedStore,
		Fetcher:     fetcher,
		Client:      gecko,
		ProjectsTTL: cfg.NFTProjectsTTL,
		FloorTTL:    cfg.QuoteTTL,
		Logger:      logger,
	})

	cardanoNFT := nft.NewCardanoService(&nft.CardanoConfig{
		Store:       sharedStore,
		Client:      opencnft,
		FloorTTL:    cfg.QuoteTTL,
		ProjectsTTL: cfg.NFTProjectsTTL,
		Logger:      logger,
	})

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		APIKey:        cfg.AuthAPIKey,
		Environment:   cfg.Environment,
		Logger:        logger,
		HealthChecker: healthChecker,
		Quotes:        quoteService,
		ETHNFT:        ethNFT,
		CardanoNFT:    cardanoNFT,
	})

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		sharedStore:   sharedStore,
		redisStore:    redisStore,
		l1:            l1,
		quoteService:  quoteService,
		ethNFT:        ethNFT,
		cardanoNFT:    cardanoNFT,
		ctx:           ctx,
		cancel:        cancel,
	}

	if opts.WithSyncer {
		err = a.setupSyncer(fetcher, gecko)
		if err != nil {
			cancel()
			return nil, err
		}
	}

	return a, nil
}

// setupSharedStore connects to Redis, falling back to the in-process store
// when Redis is unreachable. The fallback keeps a single replica serving, at
// the cost of cross-replica coordination.
func setupSharedStore(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
) (store.Store, *store.RedisStore) {
	redisStore, err := store.NewRedisStore(ctx, &store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("redis-unavailable-using-memory-store",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err))
		return store.NewMemoryStore(), nil
	}

	healthChecker.SetCheck(redisStore.Ping)

	return redisStore, redisStore
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func (a *App) setupSyncer(fetcher *upstream.Fetcher, gecko *upstream.CoinGeckoClient) error {
	catalogStore, err := catalog.NewStore(&catalog.StoreConfig{
		Host:     a.cfg.PostgresHost,
		Port:     a.cfg.PostgresPort,
		User:     a.cfg.PostgresUser,
		Password: a.cfg.PostgresPass,
		Database: a.cfg.PostgresDB,
		SSLMode:  a.cfg.PostgresSSL,
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("setup catalog store: %w", err)
	}

	a.catalogStore = catalogStore
	a.syncer = catalog.NewSyncer(&catalog.SyncerConfig{
		Store:      catalogStore,
		Fetcher:    fetcher,
		Client:     gecko,
		Currencies: quote.SupportedCurrencies(),
		Pages:      a.cfg.SyncPages,
		Interval:   a.cfg.SyncInterval,
		Logger:     a.logger,
	})

	return nil
}
