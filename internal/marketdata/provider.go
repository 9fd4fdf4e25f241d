package marketdata

import (
	"context"
	"errors"
	"strings"

	"github.com/cryptonova/forecast-service/internal/models"
)

// ErrUnknownSymbol is returned when the upstream source has no data for a
// symbol. Callers match it with errors.Is.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Provider supplies daily price/volume history for a symbol, oldest first
type Provider interface {
	History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// coinIDs maps common tickers to CoinGecko coin IDs. Unknown tickers fall
// through lowercased, which works for coins whose ID matches their name.
var coinIDs = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"ada":   "cardano",
	"sol":   "solana",
	"dot":   "polkadot",
	"link":  "chainlink",
	"ltc":   "litecoin",
	"xrp":   "ripple",
	"matic": "matic-network",
	"avax":  "avalanche-2",
}

// CoinID resolves a ticker to its CoinGecko coin ID
func CoinID(symbol string) string {
	s := strings.ToLower(symbol)
	if id, ok := coinIDs[s]; ok {
		return id
	}
	return s
}
