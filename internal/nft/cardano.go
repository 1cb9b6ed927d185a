package nft

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/quote-proxy/internal/upstream"
	"github.com/mselser95/quote-proxy/pkg/store"
	"github.com/mselser95/quote-proxy/pkg/types"
	"go.uber.org/zap"
)

const (
	cnftTopProjectsKey = "CRYPTO:TOP_CNFT_PROJECTS"
	cnftFloorKeyPrefix = "CRYPTO:CNFT:"

	// lovelacePerADA converts OpenCNFT floor prices to ADA.
	lovelacePerADA = 1_000_000

	topProjectsCount = 10
)

// CardanoService serves Cardano NFT data via OpenCNFT. The provider has its
// own limits and no proxy arrangement, so calls bypass the rate gate.
type CardanoService struct {
	store       store.Store
	cnft        *upstream.OpenCNFTClient
	floorTTL    time.Duration
	projectsTTL time.Duration
	logger      *zap.Logger
}

// CardanoConfig holds Cardano NFT service configuration.
type CardanoConfig struct {
	Store       store.Store
	Client      *upstream.OpenCNFTClient
	FloorTTL    time.Duration
	ProjectsTTL time.Duration
	Logger      *zap.Logger
}

// NewCardanoService creates a new Cardano NFT service.
func NewCardanoService(cfg *CardanoConfig) *CardanoService {
	floorTTL := cfg.FloorTTL
	if floorTTL <= 0 {
		floorTTL = 5 * time.Second
	}

	projectsTTL := cfg.ProjectsTTL
	if projectsTTL <= 0 {
		projectsTTL = 24 * time.Hour
	}

	return &CardanoService{
		store:       cfg.Store,
		cnft:        cfg.Client,
		floorTTL:    floorTTL,
		projectsTTL: projectsTTL,
		logger:      cfg.Logger,
	}
}

// FloorPrice returns the floor price of a minting policy in ADA,
// formatted as a plain decimal string.
func (s *CardanoService) FloorPrice(ctx context.Context, policy string) (string, bool, error) {
	key := cnftFloorKeyPrefix + policy

	cached, err := s.store.Get(ctx, key)
	if err == nil {
		return cached, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("cnft-floor-cache-read-failed",
			zap.String("policy", policy),
			zap.Error(err))
	}

	lovelace, err := s.cnft.FloorPrice(ctx, policy)
	if err != nil {
		return "", false, fmt.Errorf("fetch cnft floor %q: %w", policy, err)
	}

	floor := strconv.FormatFloat(lovelace/lovelacePerADA, 'f', -1, 64)

	writeErr := s.store.SetWithTTL(ctx, key, floor, s.floorTTL)
	if writeErr != nil {
		s.logger.Error("cnft-floor-cache-write-failed",
			zap.String("policy", policy),
			zap.Error(writeErr))
	}

	return floor, false, nil
}

// TopProjects returns the top 10 Cardano NFT projects by 24h volume, each
// identified by its first minting policy.
func (s *CardanoService) TopProjects(ctx context.Context) ([]types.CNFTProject, bool, error) {
	cached, err := s.store.Get(ctx, cnftTopProjectsKey)
	if err == nil {
		var projects []types.CNFTProject
		decodeErr := json.Unmarshal([]byte(cached), &projects)
		if decodeErr == nil {
			return projects, true, nil
		}
		s.logger.Warn("cnft-projects-cache-malformed", zap.Error(decodeErr))
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("cnft-projects-cache-read-failed", zap.Error(err))
	}

	ranking, err := s.cnft.TopRanked(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetch cnft ranking: %w", err)
	}

	if len(ranking) > topProjectsCount {
		ranking = ranking[:topProjectsCount]
	}

	projects := make([]types.CNFTProject, 0, len(ranking))
	for _, r := range ranking {
		if len(r.Policies) == 0 {
			continue
		}
		projects = append(projects, types.CNFTProject{Name: r.Name, Policy: r.Policies[0]})
	}

	encoded, err := json.Marshal(projects)
	if err == nil {
		writeErr := s.store.SetWithTTL(ctx, cnftTopProjectsKey, string(encoded), s.projectsTTL)
		if writeErr != nil {
			s.logger.Error("cnft-projects-cache-write-failed", zap.Error(writeErr))
		}
	}

	return projects, false, nil
}
