package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptonova/forecast-service/internal/models"
)

type fakeCache struct {
	entries map[string][]models.PricePoint
	hits    int
	sets    int
}

func (f *fakeCache) Get(ctx context.Context, symbol string, days int) ([]models.PricePoint, bool) {
	points, ok := f.entries[cacheKey(symbol, days)]
	if ok {
		f.hits++
	}
	return points, ok
}

func (f *fakeCache) Set(ctx context.Context, symbol string, days int, points []models.PricePoint) {
	if f.entries == nil {
		f.entries = make(map[string][]models.PricePoint)
	}
	f.entries[cacheKey(symbol, days)] = points
	f.sets++
}

type fakeStore struct {
	history map[string][]models.PricePoint
	readErr error
	saveErr error
	reads   int
	saves   int
}

func (f *fakeStore) GetPriceHistory(symbol string, days int) ([]models.PricePoint, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.history[symbol], nil
}

func (f *fakeStore) UpsertPricePoints(symbol string, points []models.PricePoint) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.history == nil {
		f.history = make(map[string][]models.PricePoint)
	}
	f.history[symbol] = points
	return nil
}

type fakeAPI struct {
	points []models.PricePoint
	err    error
	calls  int
}

func (f *fakeAPI) History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

func somePoints(prices ...float64) []models.PricePoint {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{Timestamp: base.AddDate(0, 0, i), Price: p, Volume: 500}
	}
	return points
}

func TestLayeredProviderHistory(t *testing.T) {
	log := zerolog.Nop()
	ctx := context.Background()

	t.Run("cache hit skips store and API", func(t *testing.T) {
		cache := &fakeCache{entries: map[string][]models.PricePoint{
			cacheKey("BTC", 30): somePoints(100, 105),
		}}
		store := &fakeStore{}
		api := &fakeAPI{}

		p := NewLayeredProvider(cache, store, api, log)
		points, err := p.History(ctx, "BTC", 30)
		require.NoError(t, err)

		assert.Len(t, points, 2)
		assert.Equal(t, 1, cache.hits)
		assert.Zero(t, store.reads)
		assert.Zero(t, api.calls)
	})

	t.Run("store hit warms the cache and skips API", func(t *testing.T) {
		cache := &fakeCache{}
		store := &fakeStore{history: map[string][]models.PricePoint{
			"BTC": somePoints(100, 105, 110),
		}}
		api := &fakeAPI{}

		p := NewLayeredProvider(cache, store, api, log)
		points, err := p.History(ctx, "BTC", 30)
		require.NoError(t, err)

		assert.Len(t, points, 3)
		assert.Equal(t, 1, store.reads)
		assert.Equal(t, 1, cache.sets)
		assert.Zero(t, api.calls)
	})

	t.Run("cold start fetches from API and writes through", func(t *testing.T) {
		cache := &fakeCache{}
		store := &fakeStore{}
		api := &fakeAPI{points: somePoints(100, 105, 110)}

		p := NewLayeredProvider(cache, store, api, log)
		points, err := p.History(ctx, "BTC", 30)
		require.NoError(t, err)

		assert.Len(t, points, 3)
		assert.Equal(t, 1, api.calls)
		assert.Equal(t, 1, store.saves)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("store read failure falls through to API", func(t *testing.T) {
		store := &fakeStore{readErr: errors.New("db down")}
		api := &fakeAPI{points: somePoints(100)}

		p := NewLayeredProvider(nil, store, api, log)
		points, err := p.History(ctx, "BTC", 30)
		require.NoError(t, err)
		assert.Len(t, points, 1)
		assert.Equal(t, 1, api.calls)
	})

	t.Run("API failure propagates", func(t *testing.T) {
		store := &fakeStore{}
		api := &fakeAPI{err: ErrUnknownSymbol}

		p := NewLayeredProvider(nil, store, api, log)
		_, err := p.History(ctx, "NOPE", 30)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownSymbol))
	})

	t.Run("nil cache is allowed", func(t *testing.T) {
		store := &fakeStore{history: map[string][]models.PricePoint{
			"BTC": somePoints(100),
		}}

		p := NewLayeredProvider(nil, store, &fakeAPI{}, log)
		points, err := p.History(ctx, "BTC", 30)
		require.NoError(t, err)
		assert.Len(t, points, 1)
	})
}

func TestLayeredProviderRefresh(t *testing.T) {
	log := zerolog.Nop()
	ctx := context.Background()

	t.Run("always fetches upstream even when layers are warm", func(t *testing.T) {
		cache := &fakeCache{entries: map[string][]models.PricePoint{
			cacheKey("BTC", 30): somePoints(90),
		}}
		store := &fakeStore{history: map[string][]models.PricePoint{
			"BTC": somePoints(95),
		}}
		api := &fakeAPI{points: somePoints(100, 105)}

		p := NewLayeredProvider(cache, store, api, log)
		points, err := p.Refresh(ctx, "BTC", 30)
		require.NoError(t, err)

		assert.Len(t, points, 2)
		assert.Equal(t, 1, api.calls)
		assert.Equal(t, 1, store.saves)
		assert.Len(t, cache.entries[cacheKey("BTC", 30)], 2)
	})

	t.Run("persist failure does not fail the refresh", func(t *testing.T) {
		store := &fakeStore{saveErr: errors.New("db down")}
		api := &fakeAPI{points: somePoints(100)}

		p := NewLayeredProvider(nil, store, api, log)
		points, err := p.Refresh(ctx, "BTC", 30)
		require.NoError(t, err)
		assert.Len(t, points, 1)
	})

	t.Run("upstream failure propagates", func(t *testing.T) {
		api := &fakeAPI{err: errors.New("rate limited")}

		p := NewLayeredProvider(nil, &fakeStore{}, api, log)
		_, err := p.Refresh(ctx, "BTC", 30)
		require.Error(t, err)
	})
}
