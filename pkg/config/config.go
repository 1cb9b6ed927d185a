package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel    string
	HTTPPort    string
	Environment string
	AuthAPIKey  string

	// Shared store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Upstream providers
	CoingeckoBaseURL string
	OpencnftBaseURL  string
	UpstreamTimeout  time.Duration

	// Proxy failover
	ProxyURL     string
	ForceProxy   bool
	ProxyFlagTTL time.Duration

	// Rate gate
	GateMaxRequests int
	GateWindow      time.Duration
	GateLockTTL     time.Duration
	GatePenaltyTTL  time.Duration
	PacingInterval  time.Duration

	// Cache TTLs
	QuoteTTL       time.Duration
	CatalogTTL     time.Duration
	NFTProjectsTTL time.Duration

	// Catalog sync
	SyncInterval time.Duration
	SyncPages    int

	// Catalog storage
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Exception map overrides (optional YAML file)
	ExceptionMapFile string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort:    getEnvOrDefault("HTTP_PORT", "8080"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		AuthAPIKey:  os.Getenv("API_KEY"),

		// Shared store defaults
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),

		// Upstream defaults
		CoingeckoBaseURL: getEnvOrDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		OpencnftBaseURL:  getEnvOrDefault("OPENCNFT_BASE_URL", "https://api.opencnft.io/1"),
		UpstreamTimeout:  getDurationOrDefault("UPSTREAM_TIMEOUT", 10*time.Second),

		// Proxy failover defaults
		ProxyURL:     os.Getenv("PROXY_URL"),
		ForceProxy:   getBoolOrDefault("FORCE_PROXY", false),
		ProxyFlagTTL: getDurationOrDefault("PROXY_FLAG_TTL", time.Hour),

		// Rate gate defaults
		GateMaxRequests: getIntOrDefault("GATE_MAX_REQUESTS", 25),
		GateWindow:      getDurationOrDefault("GATE_WINDOW", time.Minute),
		GateLockTTL:     getDurationOrDefault("GATE_LOCK_TTL", 2500*time.Millisecond),
		GatePenaltyTTL:  getDurationOrDefault("GATE_PENALTY_TTL", time.Minute),
		PacingInterval:  getDurationOrDefault("PACING_INTERVAL", 5*time.Second),

		// Cache TTL defaults: short for quotes, long for catalogs
		QuoteTTL:       getDurationOrDefault("REDIS_TICKER_MARKET_TTL", 5*time.Second),
		CatalogTTL:     getDurationOrDefault("REDIS_CATALOG_TTL", 6*time.Hour),
		NFTProjectsTTL: getDurationOrDefault("REDIS_NFT_PROJECTS_TTL", 24*time.Hour),

		// Catalog sync defaults
		SyncInterval: getDurationOrDefault("CONFIG_INTERVAL", 24*time.Hour),
		SyncPages:    getIntOrDefault("CONFIG_SYNC_PAGES", 4),

		// Catalog storage defaults
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "quoteproxy"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "quoteproxy123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "quoteproxy"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		ExceptionMapFile: os.Getenv("TICKER_EXCEPTIONS_FILE"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.CoingeckoBaseURL == "" {
		return fmt.Errorf("COINGECKO_BASE_URL cannot be empty")
	}

	if c.GateMaxRequests <= 0 {
		return fmt.Errorf("GATE_MAX_REQUESTS must be positive, got %d", c.GateMaxRequests)
	}

	if c.GateWindow <= 0 {
		return fmt.Errorf("GATE_WINDOW must be positive, got %s", c.GateWindow)
	}

	if c.ProxyURL != "" {
		_, err := url.Parse(c.ProxyURL)
		if err != nil {
			return fmt.Errorf("PROXY_URL is not a valid URL: %w", err)
		}
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
