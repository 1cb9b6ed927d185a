package types

import (
	"errors"
	"fmt"
)

// ErrUnsupportedTicker indicates the requested ticker is malformed or names a
// coin unknown to both the exception map and the provider catalog. It is a
// client-input problem and must never be retried.
var ErrUnsupportedTicker = errors.New("unsupported ticker")

// ProviderError indicates the upstream provider responded but the payload is
// missing the fields we need (price or 24h change for the requested currency).
type ProviderError struct {
	Ticker   string
	CoinID   string
	Currency string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned no quote for ticker %s (%s/%s)", e.Ticker, e.CoinID, e.Currency)
}

// UpstreamError wraps a transport-level failure talking to a provider
// (network error, timeout, non-2xx status).
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
	}

	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether the error is a provider rate-limit rejection.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode == 429
	}

	return false
}
