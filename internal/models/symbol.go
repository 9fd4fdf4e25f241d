package models

import "time"

// TrackedSymbol is a watchlist entry the price-sync scheduler keeps history
// fresh for. CoingeckoID is the upstream API identifier ("bitcoin" for BTC).
type TrackedSymbol struct {
	ID          int       `json:"id"`
	Symbol      string    `json:"symbol"`
	CoingeckoID string    `json:"coingecko_id"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
