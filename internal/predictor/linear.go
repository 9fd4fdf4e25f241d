package predictor

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/models"
)

const defaultLinearWindow = 7

// LinearModel is the regression variant: ordinary least squares over the
// trailing window of prices against step index, extrapolated one step past
// the end of the history.
type LinearModel struct {
	manifest *Manifest
	window   int
}

// NewLinearModel builds the regression variant from a manifest; a nil
// manifest yields an unloaded model
func NewLinearModel(m *Manifest) *LinearModel {
	return &LinearModel{
		manifest: m,
		window:   int(m.param("window", defaultLinearWindow)),
	}
}

// Kind identifies the variant
func (l *LinearModel) Kind() models.ModelKind {
	return models.KindLinear
}

// Loaded reports whether trained parameters are available
func (l *LinearModel) Loaded() bool {
	return l.manifest != nil
}

// Predict fits a line through the trailing window of prices and reads it one
// step forward. A single-point history has no trend evidence and predicts
// the price unchanged.
func (l *LinearModel) Predict(history []features.Vector) (models.ModelPrediction, error) {
	if !l.Loaded() {
		return models.ModelPrediction{}, fmt.Errorf("%w: %s", ErrModelUnavailable, l.Kind())
	}
	if len(history) == 0 {
		return models.ModelPrediction{}, fmt.Errorf("%w: no feature vectors", ErrInsufficientHistory)
	}

	start := len(history) - l.window
	if start < 0 {
		start = 0
	}
	window := history[start:]

	price := window[len(window)-1].Price
	if len(window) >= 2 {
		xs := make([]float64, len(window))
		ys := make([]float64, len(window))
		for i, v := range window {
			xs[i] = float64(i)
			ys[i] = v.Price
		}
		intercept, slope := stat.LinearRegression(xs, ys, nil, false)
		price = intercept + slope*float64(len(window))
	}

	return models.ModelPrediction{
		Kind:           l.Kind(),
		PredictedPrice: price,
		Confidence:     clampConfidence(l.manifest.Accuracy),
	}, nil
}
