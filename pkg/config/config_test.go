package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 25, cfg.GateMaxRequests)
	assert.Equal(t, time.Minute, cfg.GateWindow)
	assert.Equal(t, 5*time.Second, cfg.QuoteTTL)
	assert.Equal(t, 24*time.Hour, cfg.SyncInterval)
	assert.Equal(t, 4, cfg.SyncPages)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("GATE_MAX_REQUESTS", "50")
	t.Setenv("REDIS_TICKER_MARKET_TTL", "30s")
	t.Setenv("FORCE_PROXY", "true")
	t.Setenv("API_KEY", "secret")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, 50, cfg.GateMaxRequests)
	assert.Equal(t, 30*time.Second, cfg.QuoteTTL)
	assert.True(t, cfg.ForceProxy)
	assert.Equal(t, "secret", cfg.AuthAPIKey)
}

func TestLoadFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("GATE_MAX_REQUESTS", "not-a-number")
	t.Setenv("GATE_WINDOW", "soon")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.GateMaxRequests)
	assert.Equal(t, time.Minute, cfg.GateWindow)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty http port",
			mutate:  func(c *Config) { c.HTTPPort = "" },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "empty coingecko url",
			mutate:  func(c *Config) { c.CoingeckoBaseURL = "" },
			wantErr: "COINGECKO_BASE_URL",
		},
		{
			name:    "non-positive gate max",
			mutate:  func(c *Config) { c.GateMaxRequests = 0 },
			wantErr: "GATE_MAX_REQUESTS",
		},
		{
			name:    "non-positive gate window",
			mutate:  func(c *Config) { c.GateWindow = 0 },
			wantErr: "GATE_WINDOW",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
