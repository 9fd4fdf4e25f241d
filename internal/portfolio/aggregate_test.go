package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptonova/forecast-service/internal/models"
)

func asset(symbol string, amount, purchase, current float64) models.Asset {
	return models.Asset{
		Symbol:        symbol,
		Amount:        amount,
		PurchasePrice: purchase,
		CurrentPrice:  current,
		PurchaseDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func forecastFor(symbol string, current, fused float64) *models.EnsembleForecast {
	return &models.EnsembleForecast{
		Symbol:          symbol,
		CurrentPrice:    current,
		FusedPrice:      fused,
		FusedConfidence: 90,
		FuturePath: []models.PathPoint{
			{Date: "2024-06-02", PredictedPrice: fused, Confidence: 89.5},
		},
		GeneratedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildPortfolio(t *testing.T) {
	t.Run("computes totals", func(t *testing.T) {
		p := BuildPortfolio([]models.Asset{
			asset("BTC", 2, 100, 150),
			asset("ETH", 10, 20, 15),
		})

		assert.InDelta(t, 450.0, p.TotalValue, 1e-9)
		assert.InDelta(t, 400.0, p.TotalCost, 1e-9)
		assert.InDelta(t, 50.0, p.TotalGainLoss, 1e-9)
		assert.InDelta(t, 12.5, p.TotalGainLossPercentage, 1e-9)
	})

	t.Run("empty portfolio is all zeros", func(t *testing.T) {
		p := BuildPortfolio(nil)
		assert.Zero(t, p.TotalValue)
		assert.Zero(t, p.TotalCost)
		assert.Zero(t, p.TotalGainLossPercentage)
	})
}

func TestDiversificationScore(t *testing.T) {
	// The step function must be monotonically non-decreasing in asset count.
	cases := map[int]int{
		0: 0,
		1: 25,
		2: 50,
		3: 50,
		4: 75,
		5: 75,
		6: 90,
		9: 90,
	}
	prev := -1
	for _, count := range []int{0, 1, 2, 3, 4, 5, 6, 9} {
		score := diversificationScore(count)
		assert.Equal(t, cases[count], score, "count %d", count)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestRiskLevel(t *testing.T) {
	t.Run("low under 20 percent mean move", func(t *testing.T) {
		assets := []models.Asset{
			asset("BTC", 1, 100, 110),
			asset("ETH", 1, 100, 95),
		}
		assert.Equal(t, models.RiskLow, riskLevel(assets))
	})

	t.Run("medium under 50 percent mean move", func(t *testing.T) {
		assets := []models.Asset{
			asset("BTC", 1, 100, 130),
			asset("ETH", 1, 100, 70),
		}
		assert.Equal(t, models.RiskMedium, riskLevel(assets))
	})

	t.Run("high at 50 percent and beyond", func(t *testing.T) {
		assets := []models.Asset{
			asset("BTC", 1, 100, 150),
			asset("ETH", 1, 100, 50),
		}
		assert.Equal(t, models.RiskHigh, riskLevel(assets))
	})

	t.Run("losses count as much as gains", func(t *testing.T) {
		assets := []models.Asset{asset("DOGE", 1, 100, 40)}
		assert.Equal(t, models.RiskHigh, riskLevel(assets))
	})

	t.Run("empty portfolio reads low", func(t *testing.T) {
		assert.Equal(t, models.RiskLow, riskLevel(nil))
	})
}

func TestAggregate(t *testing.T) {
	t.Run("uses fused prices when forecasts are present", func(t *testing.T) {
		assets := []models.Asset{
			asset("BTC", 2, 100, 110),
			asset("ETH", 5, 20, 22),
		}
		forecasts := map[string]*models.EnsembleForecast{
			"BTC": forecastFor("BTC", 110, 120),
			"ETH": forecastFor("ETH", 22, 25),
		}

		snap := Aggregate(assets, forecasts)
		assert.InDelta(t, 2*120+5*25, snap.PredictedPortfolioValue, 1e-9)
		assert.Empty(t, snap.FailedSymbols)
	})

	t.Run("missing forecast falls back to current price", func(t *testing.T) {
		assets := []models.Asset{
			asset("BTC", 2, 100, 110),
			asset("ETH", 5, 20, 22),
			asset("SOL", 10, 50, 40),
		}
		forecasts := map[string]*models.EnsembleForecast{
			"BTC": forecastFor("BTC", 110, 120),
			"ETH": forecastFor("ETH", 22, 25),
		}

		snap := Aggregate(assets, forecasts)
		assert.InDelta(t, 2*120+5*25+10*40, snap.PredictedPortfolioValue, 1e-9)
		assert.Equal(t, []string{"SOL"}, snap.FailedSymbols)
	})

	t.Run("no forecasts at all still aggregates", func(t *testing.T) {
		assets := []models.Asset{asset("BTC", 2, 100, 110)}

		snap := Aggregate(assets, nil)
		assert.InDelta(t, 220.0, snap.PredictedPortfolioValue, 1e-9)
		assert.Equal(t, []string{"BTC"}, snap.FailedSymbols)
	})

	t.Run("identifies top and worst performers", func(t *testing.T) {
		assets := []models.Asset{
			asset("BTC", 1, 100, 140),
			asset("ETH", 1, 100, 90),
			asset("SOL", 1, 100, 160),
		}

		snap := Aggregate(assets, nil)
		require.NotNil(t, snap.TopPerformer)
		require.NotNil(t, snap.WorstPerformer)
		assert.Equal(t, "SOL", snap.TopPerformer.Symbol)
		assert.Equal(t, "ETH", snap.WorstPerformer.Symbol)
	})

	t.Run("empty portfolio has no performers", func(t *testing.T) {
		snap := Aggregate(nil, nil)
		assert.Nil(t, snap.TopPerformer)
		assert.Nil(t, snap.WorstPerformer)
		assert.Equal(t, 0, snap.DiversificationScore)
		assert.Zero(t, snap.PredictedPortfolioValue)
	})
}
