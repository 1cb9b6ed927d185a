package quote

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultExceptions maps ticker symbols straight to provider coin ids,
// bypassing the catalog. Symbols whose catalog entry is ambiguous or wrong
// live here; the map always wins over the catalog.
var defaultExceptions = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"xrp":   "ripple",
	"ltc":   "litecoin",
	"dot":   "polkadot",
	"sol":   "solana",
	"matic": "matic-network",
	"usdt":  "tether",
	"usdc":  "usd-coin",
	"bnb":   "binancecoin",
	"link":  "chainlink",
	"uni":   "uniswap",
	"shib":  "shiba-inu",
	"xlm":   "stellar",
	"algo":  "algorand",
	"etc":   "ethereum-classic",
}

// LoadExceptions returns the exception map, merged with overrides from the
// given YAML file (symbol: provider-id) when path is non-empty.
func LoadExceptions(path string) (map[string]string, error) {
	exceptions := make(map[string]string, len(defaultExceptions))
	for k, v := range defaultExceptions {
		exceptions[k] = v
	}

	if path == "" {
		return exceptions, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exceptions file: %w", err)
	}

	overrides := make(map[string]string)
	err = yaml.Unmarshal(raw, &overrides)
	if err != nil {
		return nil, fmt.Errorf("parse exceptions file: %w", err)
	}

	for k, v := range overrides {
		exceptions[k] = v
	}

	return exceptions, nil
}
