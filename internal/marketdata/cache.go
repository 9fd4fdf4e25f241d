package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cryptonova/forecast-service/internal/models"
)

// Cache is a Redis-backed read-through cache for fetched price history.
// Every failure degrades to a miss; the cache never fails a request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCache creates a history cache with the given TTL
func NewCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "marketdata_cache").Logger(),
	}
}

func cacheKey(symbol string, days int) string {
	return fmt.Sprintf("marketdata:history:%s:%d", symbol, days)
}

// Get returns cached history and whether the lookup hit
func (c *Cache) Get(ctx context.Context, symbol string, days int) ([]models.PricePoint, bool) {
	key := cacheKey(symbol, days)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return nil, false
	}

	var points []models.PricePoint
	if err := json.Unmarshal(data, &points); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache entry corrupt")
		return nil, false
	}
	return points, true
}

// Set stores history under the symbol/days key with the configured TTL
func (c *Cache) Set(ctx context.Context, symbol string, days int, points []models.PricePoint) {
	key := cacheKey(symbol, days)

	data, err := json.Marshal(points)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
