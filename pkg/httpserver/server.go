package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mselser95/quote-proxy/pkg/healthprobe"
	"github.com/mselser95/quote-proxy/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// QuoteResolver resolves ticker quotes and serves the coin catalog.
type QuoteResolver interface {
	Resolve(ctx context.Context, tickerName string) (types.Quote, error)
	ListConfig(ctx context.Context, page int) (types.TickerConfig, error)
	GetCoin(ctx context.Context, symbol string) (*types.Coin, error)
	Currencies() []string
}

// ETHNFTProvider serves Ethereum NFT rankings and floor prices.
type ETHNFTProvider interface {
	TopProjects(ctx context.Context) ([]types.NFTProject, bool, error)
	FloorPrice(ctx context.Context, slug string) (string, bool, error)
}

// CardanoNFTProvider serves Cardano NFT rankings and floor prices.
type CardanoNFTProvider interface {
	TopProjects(ctx context.Context) ([]types.CNFTProject, bool, error)
	FloorPrice(ctx context.Context, policy string) (string, bool, error)
}

// Server provides the public quote API plus metrics and health checks.
type Server struct {
	server        *http.Server
	router        chi.Router
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration.
type Config struct {
	Port          string
	APIKey        string
	Environment   string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Quotes        QuoteResolver
	ETHNFT        ETHNFTProvider
	CardanoNFT    CardanoNFTProvider
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Operational routes, never behind auth
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	h := newHandlers(cfg.Quotes, cfg.ETHNFT, cfg.CardanoNFT, cfg.Logger)

	r.Group(func(r chi.Router) {
		r.Use(apiKeyAuth(cfg.APIKey, cfg.Environment, cfg.Logger))

		r.Get("/ticker", h.Ticker)
		r.Get("/ticker/config", h.TickerConfig)
		r.Get("/coin/{name}", h.Coin)
		r.Get("/currencies", h.Currencies)

		if cfg.ETHNFT != nil {
			r.Get("/eth_nft/projects", h.ETHProjects)
			r.Get("/eth_nft/{slug}/floor", h.ETHFloor)
		}

		if cfg.CardanoNFT != nil {
			r.Get("/cnft/projects", h.CNFTProjects)
			r.Get("/cnft/{policy}/floor", h.CNFTFloor)
		}
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		router:        r,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
