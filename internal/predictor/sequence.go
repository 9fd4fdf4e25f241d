package predictor

import (
	"fmt"

	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/models"
)

// Sequence model parameter defaults
const (
	defaultSequenceWindow  = 10
	defaultMomentumWeight  = 0.5
	defaultReversionWeight = 0.3
)

// SequenceModel is the recurrent-style variant. It folds an exponentially
// weighted momentum signal over its window and adds an RSI mean-reversion
// term from the newest step, so recent vectors dominate the estimate.
type SequenceModel struct {
	manifest        *Manifest
	window          int
	momentumWeight  float64
	reversionWeight float64
}

// NewSequenceModel builds the sequence variant from a manifest; a nil
// manifest yields an unloaded model
func NewSequenceModel(m *Manifest) *SequenceModel {
	return &SequenceModel{
		manifest:        m,
		window:          int(m.param("window", defaultSequenceWindow)),
		momentumWeight:  m.param("momentum_weight", defaultMomentumWeight),
		reversionWeight: m.param("rsi_weight", defaultReversionWeight),
	}
}

// Kind identifies the variant
func (s *SequenceModel) Kind() models.ModelKind {
	return models.KindSequence
}

// Loaded reports whether trained parameters are available
func (s *SequenceModel) Loaded() bool {
	return s.manifest != nil
}

// Predict estimates the next price from the trailing window of vectors.
// Fails with ErrInsufficientHistory when fewer than the window length are
// available; the fuser treats that as model-unavailable.
func (s *SequenceModel) Predict(history []features.Vector) (models.ModelPrediction, error) {
	if !s.Loaded() {
		return models.ModelPrediction{}, fmt.Errorf("%w: %s", ErrModelUnavailable, s.Kind())
	}
	if len(history) < s.window {
		return models.ModelPrediction{}, fmt.Errorf("%w: have %d vectors, need %d", ErrInsufficientHistory, len(history), s.window)
	}

	window := history[len(history)-s.window:]
	alpha := 2.0 / (float64(s.window) + 1.0)

	momentum := maSpread(window[0])
	for _, v := range window[1:] {
		momentum = alpha*maSpread(v) + (1-alpha)*momentum
	}

	latest := window[len(window)-1]
	reversion := (50 - latest.RSI) / 100

	factor := 1 + momentum*s.momentumWeight + reversion*s.reversionWeight
	return models.ModelPrediction{
		Kind:           s.Kind(),
		PredictedPrice: latest.Price * factor,
		Confidence:     clampConfidence(s.manifest.Accuracy),
	}, nil
}

// maSpread is the short/long moving-average divergence, the model's raw
// momentum input
func maSpread(v features.Vector) float64 {
	if v.MA30 == 0 {
		return 0
	}
	return (v.MA7 - v.MA30) / v.MA30
}
