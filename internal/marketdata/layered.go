package marketdata

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cryptonova/forecast-service/internal/models"
)

// HistoryCache is the optional read-through cache in front of the store.
// A nil cache disables caching.
type HistoryCache interface {
	Get(ctx context.Context, symbol string, days int) ([]models.PricePoint, bool)
	Set(ctx context.Context, symbol string, days int, points []models.PricePoint)
}

// PriceStore persists fetched history between syncs
type PriceStore interface {
	GetPriceHistory(symbol string, days int) ([]models.PricePoint, error)
	UpsertPricePoints(symbol string, points []models.PricePoint) error
}

// LayeredProvider serves history cache-first, then from the store, and only
// then from the upstream API, writing fetched data back through both layers.
type LayeredProvider struct {
	cache HistoryCache
	store PriceStore
	api   Provider
	log   zerolog.Logger
}

// NewLayeredProvider assembles the cache -> store -> API chain.
// cache may be nil when Redis is not configured.
func NewLayeredProvider(cache HistoryCache, store PriceStore, api Provider, log zerolog.Logger) *LayeredProvider {
	return &LayeredProvider{
		cache: cache,
		store: store,
		api:   api,
		log:   log.With().Str("component", "marketdata").Logger(),
	}
}

// History returns up to days of history for a symbol, oldest first
func (p *LayeredProvider) History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	if p.cache != nil {
		if points, ok := p.cache.Get(ctx, symbol, days); ok {
			return points, nil
		}
	}

	points, err := p.store.GetPriceHistory(symbol, days)
	if err != nil {
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("Store read failed, falling through to API")
	}
	if len(points) > 0 {
		if p.cache != nil {
			p.cache.Set(ctx, symbol, days, points)
		}
		return points, nil
	}

	return p.Refresh(ctx, symbol, days)
}

// Refresh bypasses cache and store reads, fetches fresh history from the
// upstream API, and writes it back through both layers. The sync scheduler
// calls this to keep tracked symbols warm.
func (p *LayeredProvider) Refresh(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	points, err := p.api.History(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	if err := p.store.UpsertPricePoints(symbol, points); err != nil {
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist fetched history")
	}
	if p.cache != nil {
		p.cache.Set(ctx, symbol, days, points)
	}

	p.log.Debug().Str("symbol", symbol).Int("points", len(points)).Msg("Refreshed market history")
	return points, nil
}
