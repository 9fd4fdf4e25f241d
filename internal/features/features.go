package features

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cryptonova/forecast-service/internal/models"
)

// ErrInsufficientData indicates the price history is shorter than the
// configured lookback
var ErrInsufficientData = errors.New("insufficient price history")

// Size is the fixed width of every feature vector
const Size = 11

// Indicator period constants
const (
	rsiPeriod       = 14
	macdFastPeriod  = 12
	macdSlowPeriod  = 26
	bollingerPeriod = 20
	volumeMAPeriod  = 7
)

// Vector is one fixed-width set of features derived from a window of price
// points. Field order matches Values().
type Vector struct {
	Price             float64 `json:"price"`
	PctChange         float64 `json:"pct_change"`
	MA7               float64 `json:"ma_7"`
	MA14              float64 `json:"ma_14"`
	MA30              float64 `json:"ma_30"`
	Volatility        float64 `json:"volatility"`
	RSI               float64 `json:"rsi"`
	MACD              float64 `json:"macd"`
	BollingerPosition float64 `json:"bollinger_position"`
	VolumeMA          float64 `json:"volume_ma"`
	VolumeRatio       float64 `json:"volume_ratio"`
}

// Values returns the features as a fixed ordered list
func (v Vector) Values() [Size]float64 {
	return [Size]float64{
		v.Price, v.PctChange, v.MA7, v.MA14, v.MA30, v.Volatility,
		v.RSI, v.MACD, v.BollingerPosition, v.VolumeMA, v.VolumeRatio,
	}
}

// Engineer computes feature vectors from raw price history. It holds no
// mutable state and is safe for concurrent use.
type Engineer struct {
	lookback int
}

// NewEngineer creates an Engineer with the given lookback window
func NewEngineer(lookback int) (*Engineer, error) {
	if lookback < 2 {
		return nil, fmt.Errorf("lookback must be at least 2, got %d", lookback)
	}
	return &Engineer{lookback: lookback}, nil
}

// Lookback returns the configured minimum window length
func (e *Engineer) Lookback() int {
	return e.lookback
}

// Compute derives a feature vector from the trailing end of the given
// history. Moving averages clamp to available history when it is shorter
// than their period; that degrades accuracy but is not an error. Fails with
// ErrInsufficientData when fewer than lookback points are present.
func (e *Engineer) Compute(prices []models.PricePoint) (Vector, error) {
	if len(prices) < e.lookback {
		return Vector{}, fmt.Errorf("%w: have %d points, need %d", ErrInsufficientData, len(prices), e.lookback)
	}

	closes := make([]float64, len(prices))
	volumes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Price
		volumes[i] = p.Volume
	}

	current := closes[len(closes)-1]
	volumeMA := trailingMean(volumes, volumeMAPeriod)

	v := Vector{
		Price:             current,
		PctChange:         pctChange(closes),
		MA7:               trailingMean(closes, 7),
		MA14:              trailingMean(closes, 14),
		MA30:              trailingMean(closes, 30),
		Volatility:        coefficientOfVariation(tail(closes, e.lookback)),
		RSI:               rsi(closes, rsiPeriod),
		MACD:              macd(closes),
		BollingerPosition: bollingerPosition(closes, bollingerPeriod),
		VolumeMA:          volumeMA,
		VolumeRatio:       ratio(volumes[len(volumes)-1], volumeMA),
	}
	return v, nil
}

// ComputeSeries derives one vector per step from index lookback-1 through the
// end of the history, each over the prefix ending at that step
func (e *Engineer) ComputeSeries(prices []models.PricePoint) ([]Vector, error) {
	if len(prices) < e.lookback {
		return nil, fmt.Errorf("%w: have %d points, need %d", ErrInsufficientData, len(prices), e.lookback)
	}

	series := make([]Vector, 0, len(prices)-e.lookback+1)
	for i := e.lookback; i <= len(prices); i++ {
		v, err := e.Compute(prices[:i])
		if err != nil {
			return nil, err
		}
		series = append(series, v)
	}
	return series, nil
}

// trailingMean averages the last min(period, len) values
func trailingMean(values []float64, period int) float64 {
	window := tail(values, period)
	if len(window) == 0 {
		return 0
	}
	return stat.Mean(window, nil)
}

// pctChange returns the fractional change between the last two values
func pctChange(closes []float64) float64 {
	prev := closes[len(closes)-2]
	if prev == 0 {
		return 0
	}
	return (closes[len(closes)-1] - prev) / prev
}

// coefficientOfVariation is stddev/mean of the window, 0 when the mean is 0
func coefficientOfVariation(window []float64) float64 {
	if len(window) < 2 {
		return 0
	}
	mean := stat.Mean(window, nil)
	if mean == 0 {
		return 0
	}
	return stat.StdDev(window, nil) / mean
}

// rsi is the standard average-gain/average-loss oscillator over the last
// `period` deltas. Neutral 50 when history is too short, 100 when there are
// no losses in the window.
func rsi(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	window := tail(closes, period+1)
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// macd is the 12/26 EMA difference, 0 when fewer than 26 points exist
func macd(closes []float64) float64 {
	if len(closes) < macdSlowPeriod {
		return 0
	}
	return ema(closes, macdFastPeriod) - ema(closes, macdSlowPeriod)
}

// ema seeds from the first value of the trailing period window and folds
// forward with alpha = 2/(period+1)
func ema(closes []float64, period int) float64 {
	window := tail(closes, period)
	alpha := 2.0 / (float64(period) + 1.0)

	value := window[0]
	for _, c := range window[1:] {
		value = alpha*c + (1-alpha)*value
	}
	return value
}

// bollingerPosition is (price - SMA20) / (2*stddev20), clamped to [-1, 1] so
// near-zero volatility cannot produce unbounded output. 0 when history is
// shorter than the period.
func bollingerPosition(closes []float64, period int) float64 {
	if len(closes) < period {
		return 0
	}

	window := tail(closes, period)
	sma := stat.Mean(window, nil)
	sd := stat.StdDev(window, nil)
	if sd == 0 {
		return 0
	}

	pos := (closes[len(closes)-1] - sma) / (2 * sd)
	return math.Max(-1, math.Min(1, pos))
}

func ratio(value, base float64) float64 {
	if base == 0 {
		return 1
	}
	return value / base
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
