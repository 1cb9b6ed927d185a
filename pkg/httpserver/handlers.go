package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/mselser95/quote-proxy/pkg/types"
	"go.uber.org/zap"
)

const (
	msgUnsupported   = "Unsupported"
	msgUpstreamError = "Upstream Error"

	// resolveAttempts bounds the ticker retry loop: the initial call plus
	// one retry on transient or provider errors.
	resolveAttempts = 2
)

type handlers struct {
	quotes  QuoteResolver
	ethNFT  ETHNFTProvider
	cardano CardanoNFTProvider
	logger  *zap.Logger
}

func newHandlers(quotes QuoteResolver, ethNFT ETHNFTProvider, cardano CardanoNFTProvider, logger *zap.Logger) *handlers {
	return &handlers{
		quotes:  quotes,
		ethNFT:  ethNFT,
		cardano: cardano,
		logger:  logger,
	}
}

// Ticker serves GET /ticker?name=BASE:CURRENCY as a plain-text
// "<price>;<change24h>" string. Unsupported tickers fail fast; anything
// else gets one retry before the generic upstream error.
func (h *handlers) Ticker(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	quote, err := h.resolveWithRetry(r.Context(), name)
	if err != nil {
		if errors.Is(err, types.ErrUnsupportedTicker) {
			writeText(w, http.StatusBadRequest, msgUnsupported)
			return
		}

		h.logger.Error("ticker-resolution-failed",
			zap.String("ticker", name),
			zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgUpstreamError)
		return
	}

	writeText(w, http.StatusOK, quote.Value)
}

func (h *handlers) resolveWithRetry(ctx context.Context, name string) (types.Quote, error) {
	var lastErr error

	for attempt := 1; attempt <= resolveAttempts; attempt++ {
		quote, err := h.quotes.Resolve(ctx, name)
		if err == nil {
			return quote, nil
		}
		if errors.Is(err, types.ErrUnsupportedTicker) {
			return types.Quote{}, err
		}

		lastErr = err
		h.logger.Warn("ticker-resolution-attempt-failed",
			zap.String("ticker", name),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return types.Quote{}, lastErr
}

// TickerConfig serves GET /ticker/config?page=N.
func (h *handlers) TickerConfig(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			page = parsed
		}
	}

	cfg, err := h.quotes.ListConfig(r.Context(), page)
	if err != nil {
		h.logger.Error("ticker-config-failed", zap.Int("page", page), zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgUpstreamError)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// Coin serves GET /coin/{name}, looking up a single coin by symbol.
func (h *handlers) Coin(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	coin, err := h.quotes.GetCoin(r.Context(), name)
	if err != nil {
		h.logger.Error("coin-lookup-failed", zap.String("name", name), zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgUpstreamError)
		return
	}
	if coin == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Coin does not exist"})
		return
	}

	writeJSON(w, http.StatusOK, coin)
}

// Currencies serves GET /currencies.
func (h *handlers) Currencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quotes.Currencies())
}

// ETHProjects serves GET /eth_nft/projects.
func (h *handlers) ETHProjects(w http.ResponseWriter, r *http.Request) {
	projects, _, err := h.ethNFT.TopProjects(r.Context())
	if err != nil {
		h.logger.Error("eth-projects-failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgUpstreamError)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// ETHFloor serves GET /eth_nft/{slug}/floor as plain text.
func (h *handlers) ETHFloor(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	floor, _, err := h.ethNFT.FloorPrice(r.Context(), slug)
	if err != nil {
		h.logger.Error("eth-floor-failed", zap.String("slug", slug), zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgUpstreamError)
		return
	}

	writeText(w, http.StatusOK, floor)
}

// CNFTProjects serves GET /cnft/projects.
func (h *handlers) CNFTProjects(w http.ResponseWriter, r *http.Request) {
	projects, _, err := h.cardano.TopProjects(r.Context())
	if err != nil {
		h.logger.Error("cnft-projects-failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgUpstreamError)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// CNFTFloor serves GET /cnft/{policy}/floor as plain text.
func (h *handlers) CNFTFloor(w http.ResponseWriter, r *http.Request) {
	policy := chi.URLParam(r, "policy")

	floor, _, err := h.cardano.FloorPrice(r.Context(), policy)
	if err != nil {
		h.logger.Error("cnft-floor-failed", zap.String("policy", policy), zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgUpstreamError)
		return
	}

	writeText(w, http.StatusOK, floor)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
