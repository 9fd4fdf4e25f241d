package models

import "time"

// Event type constants
const (
	EventForecastGenerated = "FORECAST_GENERATED"
	EventPriceUpdated      = "PRICE_UPDATED"
	EventSymbolTracked     = "SYMBOL_TRACKED"
	EventSymbolUntracked   = "SYMBOL_UNTRACKED"
)

// ForecastEvent announces a completed forecasting pass
type ForecastEvent struct {
	EventType       string    `json:"event_type"`
	Symbol          string    `json:"symbol"`
	CurrentPrice    float64   `json:"current_price"`
	FusedPrice      float64   `json:"fused_price"`
	FusedConfidence float64   `json:"fused_confidence"`
	HorizonDays     int       `json:"horizon_days"`
	Timestamp       time.Time `json:"timestamp"`
}

// PriceUpdateEvent carries a market tick consumed into price history
type PriceUpdateEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// SymbolEvent announces a watchlist change
type SymbolEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
}
