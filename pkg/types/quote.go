package types

// Quote is the resolved result for a ticker request.
// Value is formatted as "<price>;<change24h>".
type Quote struct {
	Value  string
	Cached bool
}

// CatalogCoin is one entry of the provider coin catalog.
type CatalogCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Coin is the external representation of a supported coin.
type Coin struct {
	BaseID string `json:"base_id"`
	Base   string `json:"base"`
}

// CoinPage is one page of the catalog symbol listing.
type CoinPage struct {
	Data  []string `json:"data"`
	Total int      `json:"total"`
}

// TickerConfig is the payload served by the /ticker/config endpoint.
type TickerConfig struct {
	Coins      CoinPage `json:"coins"`
	Currencies []string `json:"currencies"`
}

// MarketCoin is one entry of the provider market listing used by the
// catalog sync job.
type MarketCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// NFTProject identifies an Ethereum NFT collection by provider slug.
type NFTProject struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CNFTProject identifies a Cardano NFT collection by minting policy.
type CNFTProject struct {
	Name   string `json:"name"`
	Policy string `json:"policy"`
}
