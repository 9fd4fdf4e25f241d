package predictor

import (
	"errors"
	"math"

	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/models"
)

var (
	// ErrModelUnavailable indicates the predictor failed to load and cannot
	// produce estimates. Callers exclude the model from fusion rather than
	// failing the whole forecast.
	ErrModelUnavailable = errors.New("model is not loaded")

	// ErrInsufficientHistory indicates the feature-vector history is shorter
	// than the model's minimum window. Treated like an unavailable model
	// during fusion.
	ErrInsufficientHistory = errors.New("insufficient feature history")
)

// Predictor maps an ordered feature-vector history to a single next-value
// price estimate with a self-reported confidence in [0,100]. Trained
// parameters are read-only after construction, so a Predictor is safe to
// share across concurrent forecasts.
type Predictor interface {
	Kind() models.ModelKind
	Loaded() bool
	Predict(history []features.Vector) (models.ModelPrediction, error)
}

func clampConfidence(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
