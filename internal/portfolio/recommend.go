package portfolio

import (
	"fmt"

	"github.com/cryptonova/forecast-service/internal/models"
)

// Recommendation rule thresholds
const (
	minDiversifiedAssets = 3
	concentrationShare   = 0.60
	opportunityChange    = 0.20
	warningChange        = -0.15
)

// Recommend applies the threshold rules over the portfolio and its per-asset
// forecasts. Portfolio-level diversification/concentration checks come
// first, then per-asset opportunity/warning checks in asset order. No rule
// fires twice for the same asset and type in one pass; an empty portfolio
// yields nothing actionable.
func Recommend(p models.Portfolio, forecasts map[string]*models.EnsembleForecast) []models.Recommendation {
	if len(p.Assets) == 0 {
		return nil
	}

	var recs []models.Recommendation

	if len(p.Assets) < minDiversifiedAssets {
		recs = append(recs, models.Recommendation{
			Type: models.RecommendationDiversification,
			Message: fmt.Sprintf("Portfolio holds only %d asset(s). Consider spreading across at least %d to reduce single-asset risk.",
				len(p.Assets), minDiversifiedAssets),
			Priority: models.PriorityHigh,
		})
	}

	if p.TotalValue > 0 {
		for _, a := range p.Assets {
			share := a.Value() / p.TotalValue
			if share > concentrationShare {
				recs = append(recs, models.Recommendation{
					Type: models.RecommendationConcentration,
					Message: fmt.Sprintf("%s makes up %.0f%% of portfolio value. Consider rebalancing to limit concentration.",
						a.Symbol, share*100),
					Priority: models.PriorityMedium,
				})
			}
		}
	}

	seen := make(map[string]bool)
	for _, a := range p.Assets {
		if seen[a.Symbol] {
			continue
		}
		seen[a.Symbol] = true

		fc := forecasts[a.Symbol]
		if fc == nil || len(fc.FuturePath) == 0 || fc.CurrentPrice == 0 {
			continue
		}

		change := (fc.FinalPathPrice() - fc.CurrentPrice) / fc.CurrentPrice
		switch {
		case change > opportunityChange:
			recs = append(recs, models.Recommendation{
				Type: models.RecommendationOpportunity,
				Message: fmt.Sprintf("%s is forecast to gain %.1f%% over the horizon. Potential buying opportunity.",
					a.Symbol, change*100),
				Priority: models.PriorityHigh,
			})
		case change < warningChange:
			recs = append(recs, models.Recommendation{
				Type: models.RecommendationWarning,
				Message: fmt.Sprintf("%s is forecast to drop %.1f%% over the horizon. Consider reviewing this position.",
					a.Symbol, -change*100),
				Priority: models.PriorityHigh,
			})
		}
	}

	return recs
}
