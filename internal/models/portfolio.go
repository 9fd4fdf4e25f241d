package models

import "time"

// Risk level constants
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Asset represents a held position with its refreshed market price.
// Amount and prices are floats because the analytics engine consumes them;
// the stored form lives in Position.
type Asset struct {
	ID            int       `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Amount        float64   `json:"amount"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	CurrentPrice  float64   `json:"current_price"`
}

// GainPercent returns the fractional gain/loss against the purchase price
func (a *Asset) GainPercent() float64 {
	if a.PurchasePrice == 0 {
		return 0
	}
	return (a.CurrentPrice - a.PurchasePrice) / a.PurchasePrice
}

// Value returns the current market value of the holding
func (a *Asset) Value() float64 {
	return a.Amount * a.CurrentPrice
}

// Portfolio is derived entirely from the asset list and recomputed on every
// read; it is never persisted by the analytics engine.
type Portfolio struct {
	Assets                  []Asset `json:"assets"`
	TotalValue              float64 `json:"total_value"`
	TotalCost               float64 `json:"total_cost"`
	TotalGainLoss           float64 `json:"total_gain_loss"`
	TotalGainLossPercentage float64 `json:"total_gain_loss_percentage"`
}

// AnalyticsSnapshot is the aggregated portfolio view produced by one
// aggregation pass. FailedSymbols lists assets whose forecast was
// unavailable; their predicted value fell back to the current price.
type AnalyticsSnapshot struct {
	RiskLevel               string   `json:"risk_level"`
	DiversificationScore    int      `json:"diversification_score"`
	PredictedPortfolioValue float64  `json:"predicted_portfolio_value"`
	TopPerformer            *Asset   `json:"top_performer,omitempty"`
	WorstPerformer          *Asset   `json:"worst_performer,omitempty"`
	FailedSymbols           []string `json:"failed_symbols,omitempty"`
}
