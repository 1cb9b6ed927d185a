package quote

// supportedCurrencies is the static list of quote currencies served to
// devices. The catalog sync job intersects it with the currencies the
// provider actually supports.
var supportedCurrencies = []string{
	"usd", "eur", "gbp", "jpy", "aud", "cad", "chf", "cny",
	"inr", "krw", "brl", "mxn", "rub", "sek", "nok", "nzd",
	"sgd", "hkd", "pln", "try", "zar", "btc", "eth",
}

// SupportedCurrencies returns a copy of the static currency list.
func SupportedCurrencies() []string {
	out := make([]string, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}
