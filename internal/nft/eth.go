package nft

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/quote-proxy/internal/upstream"
	"github.com/mselser95/quote-proxy/pkg/store"
	"github.com/mselser95/quote-proxy/pkg/types"
	"go.uber.org/zap"
)

const (
	ethTopProjectsKey = "CRYPTO:NFT_ETH_TOP_PROJECTS"
	ethFloorKeyPrefix = "CRYPTO:ETH:"
)

// ETHService serves Ethereum NFT data through the gated CoinGecko client.
// Top-project rankings are slow-moving and cached for a day; floor prices
// use the short quote TTL.
type ETHService struct {
	store       store.Store
	fetcher     *upstream.Fetcher
	gecko       *upstream.CoinGeckoClient
	projectsTTL time.Duration
	floorTTL    time.Duration
	logger      *zap.Logger
}

// ETHConfig holds Ethereum NFT service configuration.
type ETHConfig struct {
	Store       store.Store
	Fetcher     *upstream.Fetcher
	Client      *upstream.CoinGeckoClient
	ProjectsTTL time.Duration
	FloorTTL    time.Duration
	Logger      *zap.Logger
}

// NewETHService creates a new Ethereum NFT service.
func NewETHService(cfg *ETHConfig) *ETHService {
	projectsTTL := cfg.ProjectsTTL
	if projectsTTL <= 0 {
		projectsTTL = 24 * time.Hour
	}

	floorTTL := cfg.FloorTTL
	if floorTTL <= 0 {
		floorTTL = 5 * time.Second
	}

	return &ETHService{
		store:       cfg.Store,
		fetcher:     cfg.Fetcher,
		gecko:       cfg.Client,
		projectsTTL: projectsTTL,
		floorTTL:    floorTTL,
		logger:      cfg.Logger,
	}
}

// TopProjects returns the Ethereum NFT collections ordered by 24h volume.
// The mapped ranking, not the raw provider payload, is what gets cached.
func (s *ETHService) TopProjects(ctx context.Context) ([]types.NFTProject, bool, error) {
	cached, err := s.store.Get(ctx, ethTopProjectsKey)
	if err == nil {
		var projects []types.NFTProject
		decodeErr := json.Unmarshal([]byte(cached), &projects)
		if decodeErr == nil {
			return projects, true, nil
		}
		s.logger.Warn("eth-projects-cache-malformed", zap.Error(decodeErr))
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("eth-projects-cache-read-failed", zap.Error(err))
	}

	payload, err := s.fetcher.Call(ctx, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return s.gecko.NFTList(ctx, proxy, "ethereum")
	})
	if err != nil {
		return nil, false, fmt.Errorf("fetch eth nft list: %w", err)
	}

	var collections []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err = json.Unmarshal(payload, &collections)
	if err != nil {
		return nil, false, fmt.Errorf("decode eth nft list: %w", err)
	}

	projects := make([]types.NFTProject, 0, len(collections))
	for _, c := range collections {
		projects = append(projects, types.NFTProject{Name: c.Name, Slug: c.ID})
	}

	encoded, err := json.Marshal(projects)
	if err == nil {
		s.fetcher.StoreBestEffort(ctx, ethTopProjectsKey, string(encoded), s.projectsTTL)
	}

	return projects, false, nil
}

// FloorPrice returns the native-currency floor price of a collection slug,
// formatted as a plain decimal string.
func (s *ETHService) FloorPrice(ctx context.Context, slug string) (string, bool, error) {
	key := ethFloorKeyPrefix + slug

	cached, err := s.store.Get(ctx, key)
	if err == nil {
		return cached, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("eth-floor-cache-read-failed",
			zap.String("slug", slug),
			zap.Error(err))
	}

	payload, err := s.fetcher.Call(ctx, func(ctx context.Context, proxy *url.URL) ([]byte, error) {
		return s.gecko.NFTCollection(ctx, proxy, slug)
	})
	if err != nil {
		return "", false, fmt.Errorf("fetch eth nft collection %q: %w", slug, err)
	}

	var collection struct {
		FloorPrice struct {
			NativeCurrency float64 `json:"native_currency"`
		} `json:"floor_price"`
	}
	err = json.Unmarshal(payload, &collection)
	if err != nil {
		return "", false, fmt.Errorf("decode eth nft collection %q: %w", slug, err)
	}

	floor := strconv.FormatFloat(collection.FloorPrice.NativeCurrency, 'f', -1, 64)
	s.fetcher.StoreBestEffort(ctx, key, floor, s.floorTTL)

	return floor, false, nil
}
