package portfolio

import (
	"math"

	"github.com/cryptonova/forecast-service/internal/models"
)

// Risk level thresholds over mean absolute gain/loss
const (
	riskMediumThreshold = 0.2
	riskHighThreshold   = 0.5
)

// BuildPortfolio derives totals from the asset list. The portfolio is
// recomputed on every read and never persisted.
func BuildPortfolio(assets []models.Asset) models.Portfolio {
	p := models.Portfolio{Assets: assets}
	for _, a := range assets {
		p.TotalValue += a.Value()
		p.TotalCost += a.Amount * a.PurchasePrice
	}

	p.TotalGainLoss = p.TotalValue - p.TotalCost
	if p.TotalCost != 0 {
		p.TotalGainLossPercentage = p.TotalGainLoss / p.TotalCost * 100
	}
	return p
}

// Aggregate combines per-asset forecasts with held positions into one
// analytics snapshot. Assets whose forecast is absent fall back to their
// current price for the predicted value and are flagged in FailedSymbols;
// a missing forecast never fails the aggregation.
func Aggregate(assets []models.Asset, forecasts map[string]*models.EnsembleForecast) models.AnalyticsSnapshot {
	snapshot := models.AnalyticsSnapshot{
		RiskLevel:            riskLevel(assets),
		DiversificationScore: diversificationScore(len(assets)),
	}

	var predicted float64
	flagged := make(map[string]bool)
	for _, a := range assets {
		if fc := forecasts[a.Symbol]; fc != nil {
			predicted += a.Amount * fc.FusedPrice
			continue
		}

		predicted += a.Amount * a.CurrentPrice
		if !flagged[a.Symbol] {
			flagged[a.Symbol] = true
			snapshot.FailedSymbols = append(snapshot.FailedSymbols, a.Symbol)
		}
	}
	snapshot.PredictedPortfolioValue = predicted

	if top := pickPerformer(assets, func(best, cand float64) bool { return cand > best }); top != nil {
		snapshot.TopPerformer = top
	}
	if worst := pickPerformer(assets, func(best, cand float64) bool { return cand < best }); worst != nil {
		snapshot.WorstPerformer = worst
	}
	return snapshot
}

// riskLevel buckets the mean absolute gain/loss across assets. An empty
// portfolio carries no exposure and reads Low.
func riskLevel(assets []models.Asset) string {
	if len(assets) == 0 {
		return models.RiskLow
	}

	var sum float64
	for _, a := range assets {
		sum += math.Abs(a.GainPercent())
	}
	mean := sum / float64(len(assets))

	switch {
	case mean < riskMediumThreshold:
		return models.RiskLow
	case mean < riskHighThreshold:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// diversificationScore is a coarse step function of asset count, not a
// statistical diversification measure
func diversificationScore(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 25
	case count <= 3:
		return 50
	case count <= 5:
		return 75
	default:
		return 90
	}
}

func pickPerformer(assets []models.Asset, better func(best, cand float64) bool) *models.Asset {
	if len(assets) == 0 {
		return nil
	}

	best := assets[0]
	for _, a := range assets[1:] {
		if better(best.GainPercent(), a.GainPercent()) {
			best = a
		}
	}
	return &best
}
