package forecast

import (
	"errors"

	"github.com/cryptonova/forecast-service/internal/models"
)

// ErrNoModels indicates every predictor was unavailable, so no forecast can
// be made. Unlike single-model unavailability this is fatal for the request.
var ErrNoModels = errors.New("no models available")

// Fuse combines the present model predictions into one fused estimate and
// one fused confidence, each the arithmetic mean over present entries.
// Absent models must be excluded by the caller, never passed as zero. The
// rule is deterministic and order-independent; it is intentionally not a
// weighted ensemble.
func Fuse(predictions map[models.ModelKind]models.ModelPrediction) (float64, float64, error) {
	if len(predictions) == 0 {
		return 0, 0, ErrNoModels
	}

	var priceSum, confidenceSum float64
	for _, p := range predictions {
		priceSum += p.PredictedPrice
		confidenceSum += p.Confidence
	}

	n := float64(len(predictions))
	return priceSum / n, confidenceSum / n, nil
}
