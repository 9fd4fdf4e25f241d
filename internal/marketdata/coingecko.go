package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryptonova/forecast-service/internal/models"
)

// CoinGeckoClient fetches daily market history from the CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewCoinGeckoClient creates a CoinGecko market data client
func NewCoinGeckoClient(baseURL string, timeout time.Duration, log zerolog.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "coingecko").Logger(),
	}
}

// marketChart is the response structure from the market_chart endpoint.
// Each entry is a [unix_ms, value] pair.
type marketChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// History fetches up to days of daily price points for a symbol, oldest
// first. A 404 from the API maps to ErrUnknownSymbol.
func (c *CoinGeckoClient) History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	coinID := CoinID(symbol)

	u := fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, url.PathEscape(coinID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")
	req.URL.RawQuery = q.Encode()

	c.log.Debug().Str("symbol", symbol).Str("coin_id", coinID).Int("days", days).Msg("Fetching market history")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("coin %s: %w", coinID, ErrUnknownSymbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d: %s", resp.StatusCode, string(body))
	}

	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode market chart: %w", err)
	}
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("coin %s returned no price data: %w", coinID, ErrUnknownSymbol)
	}

	// Volumes arrive as a parallel series; align by index where present.
	points := make([]models.PricePoint, 0, len(chart.Prices))
	for i, pair := range chart.Prices {
		point := models.PricePoint{
			Timestamp: time.UnixMilli(int64(pair[0])).UTC(),
			Price:     pair[1],
		}
		if i < len(chart.TotalVolumes) {
			point.Volume = chart.TotalVolumes[i][1]
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}
