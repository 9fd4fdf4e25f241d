package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/cryptonova/forecast-service/internal/models"
)

// ErrInvalidHorizon indicates a non-positive forecast horizon
var ErrInvalidHorizon = errors.New("horizon must be at least one day")

// Generator default constants
const (
	DefaultDecayRate       = 0.5
	DefaultConfidenceFloor = 50.0
)

// Generator produces multi-step future price paths from a fused one-step
// estimate. Confidence decays linearly per day down to a floor, below which
// reported confidence would be unusable.
type Generator struct {
	decayRate       float64
	confidenceFloor float64
}

// NewGenerator creates a Generator with the given per-day confidence decay
// and floor
func NewGenerator(decayRate, confidenceFloor float64) *Generator {
	return &Generator{
		decayRate:       decayRate,
		confidenceFloor: confidenceFloor,
	}
}

// GeneratePath interpolates linearly from the current price toward the fused
// estimate across horizonDays consecutive calendar days starting the day
// after `from`. The models are NOT re-run per future day; the fused value is
// a one-step trend delta spread over the horizon, an explicit simplification
// kept for compatibility with the trained pipeline.
func (g *Generator) GeneratePath(currentPrice, fusedPrice, fusedConfidence float64, horizonDays int, from time.Time) ([]models.PathPoint, error) {
	if horizonDays < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizonDays)
	}

	delta := fusedPrice - currentPrice
	path := make([]models.PathPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		confidence := fusedConfidence - g.decayRate*float64(i)
		if confidence < g.confidenceFloor {
			confidence = g.confidenceFloor
		}

		path = append(path, models.PathPoint{
			Date:           from.AddDate(0, 0, i).Format("2006-01-02"),
			PredictedPrice: currentPrice + delta*float64(i)/float64(horizonDays),
			Confidence:     confidence,
		})
	}
	return path, nil
}
