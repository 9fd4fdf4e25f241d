package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single observation in a price/volume time series.
// Sequences are ordered oldest-first and treated as immutable once fetched.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// PriceRecord represents a stored daily price observation for a symbol
type PriceRecord struct {
	ID        int             `json:"id"`
	Symbol    string          `json:"symbol"`
	Ts        time.Time       `json:"ts"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
	CreatedAt time.Time       `json:"created_at"`
}

// Point converts a stored record to the float form the engine consumes
func (r *PriceRecord) Point() PricePoint {
	return PricePoint{
		Timestamp: r.Ts,
		Price:     r.Price.InexactFloat64(),
		Volume:    r.Volume.InexactFloat64(),
	}
}
