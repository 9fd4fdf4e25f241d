package portfolio

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cryptonova/forecast-service/internal/models"
)

// PositionStore lists held positions for a user
type PositionStore interface {
	GetPositionsByUser(userID string) ([]*models.Position, error)
}

// HistoryProvider supplies price/volume history keyed by symbol
type HistoryProvider interface {
	History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// Forecaster produces a per-asset ensemble forecast
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, prices []models.PricePoint, horizonDays int) (*models.EnsembleForecast, error)
}

// Analytics bundles one aggregation pass for the API layer
type Analytics struct {
	Portfolio       models.Portfolio         `json:"portfolio"`
	Analytics       models.AnalyticsSnapshot `json:"analytics"`
	Recommendations []models.Recommendation  `json:"recommendations"`
}

// Service computes portfolio analytics by fanning one forecast task out per
// held asset, joining on all of them, and aggregating whatever settled.
type Service struct {
	store       PositionStore
	provider    HistoryProvider
	forecaster  Forecaster
	historyDays int
	log         zerolog.Logger
}

// NewService creates a portfolio analytics service
func NewService(store PositionStore, provider HistoryProvider, forecaster Forecaster, historyDays int, log zerolog.Logger) *Service {
	return &Service{
		store:       store,
		provider:    provider,
		forecaster:  forecaster,
		historyDays: historyDays,
		log:         log.With().Str("component", "portfolio").Logger(),
	}
}

type assetResult struct {
	asset    models.Asset
	forecast *models.EnsembleForecast
}

// ComputeAnalytics loads the user's positions, forecasts every asset
// concurrently, and aggregates the results. A failed per-asset forecast
// degrades that asset to its current price; it never fails the request.
func (s *Service) ComputeAnalytics(ctx context.Context, userID string, horizonDays int) (*Analytics, error) {
	positions, err := s.store.GetPositionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	// One task per asset; each goroutine owns its slot, the WaitGroup is
	// the join barrier.
	results := make([]assetResult, len(positions))
	var wg sync.WaitGroup
	for i, pos := range positions {
		wg.Add(1)
		go func(i int, pos *models.Position) {
			defer wg.Done()
			results[i] = s.resolveAsset(ctx, pos, horizonDays)
		}(i, pos)
	}
	wg.Wait()

	assets := make([]models.Asset, len(results))
	forecasts := make(map[string]*models.EnsembleForecast, len(results))
	for i, r := range results {
		assets[i] = r.asset
		if r.forecast != nil {
			forecasts[r.asset.Symbol] = r.forecast
		}
	}

	p := BuildPortfolio(assets)
	return &Analytics{
		Portfolio:       p,
		Analytics:       Aggregate(assets, forecasts),
		Recommendations: Recommend(p, forecasts),
	}, nil
}

// resolveAsset refreshes one position's market price and attempts its
// forecast. Both failures degrade: no history falls back to the purchase
// price, no forecast leaves the asset forecast-absent.
func (s *Service) resolveAsset(ctx context.Context, pos *models.Position, horizonDays int) assetResult {
	history, err := s.provider.History(ctx, pos.Symbol, s.historyDays)
	if err != nil || len(history) == 0 {
		s.log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("Price history unavailable")
		return assetResult{asset: pos.ToAsset(pos.PurchasePrice.InexactFloat64())}
	}

	asset := pos.ToAsset(history[len(history)-1].Price)

	fc, err := s.forecaster.Forecast(ctx, pos.Symbol, history, horizonDays)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("Asset forecast failed")
		return assetResult{asset: asset}
	}
	return assetResult{asset: asset, forecast: fc}
}
