package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a stored crypto holding for a user
type Position struct {
	ID            int             `json:"id"`
	UserID        string          `json:"user_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToAsset converts the stored position to the engine's asset form, stamping
// the given refreshed market price
func (p *Position) ToAsset(currentPrice float64) Asset {
	return Asset{
		ID:            p.ID,
		Symbol:        p.Symbol,
		Name:          p.Name,
		Amount:        p.Amount.InexactFloat64(),
		PurchasePrice: p.PurchasePrice.InexactFloat64(),
		PurchaseDate:  p.PurchaseDate,
		CurrentPrice:  currentPrice,
	}
}
