package predictor

import (
	"fmt"

	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/models"
)

// Tree ensemble parameter defaults
const (
	defaultTrendWeight = 0.4
	defaultRSIWeight   = 0.3
	defaultMACDWeight  = 0.3
	defaultForestStep  = 0.04
)

// ForestModel is the tree-ensemble variant. Three sub-trees vote on the
// newest vector (trend alignment, RSI extremes, MACD sign) and the weighted
// vote scales a fixed price step.
type ForestModel struct {
	manifest    *Manifest
	trendWeight float64
	rsiWeight   float64
	macdWeight  float64
	step        float64
}

// NewForestModel builds the tree-ensemble variant from a manifest; a nil
// manifest yields an unloaded model
func NewForestModel(m *Manifest) *ForestModel {
	return &ForestModel{
		manifest:    m,
		trendWeight: m.param("trend_weight", defaultTrendWeight),
		rsiWeight:   m.param("rsi_weight", defaultRSIWeight),
		macdWeight:  m.param("macd_weight", defaultMACDWeight),
		step:        m.param("step", defaultForestStep),
	}
}

// Kind identifies the variant
func (f *ForestModel) Kind() models.ModelKind {
	return models.KindTreeEnsemble
}

// Loaded reports whether trained parameters are available
func (f *ForestModel) Loaded() bool {
	return f.manifest != nil
}

// Predict estimates the next price from the newest vector's indicator votes
func (f *ForestModel) Predict(history []features.Vector) (models.ModelPrediction, error) {
	if !f.Loaded() {
		return models.ModelPrediction{}, fmt.Errorf("%w: %s", ErrModelUnavailable, f.Kind())
	}
	if len(history) == 0 {
		return models.ModelPrediction{}, fmt.Errorf("%w: no feature vectors", ErrInsufficientHistory)
	}

	latest := history[len(history)-1]

	var trend float64
	switch {
	case latest.MA7 > latest.MA14 && latest.MA14 > latest.MA30:
		trend = 1
	case latest.MA7 < latest.MA14 && latest.MA14 < latest.MA30:
		trend = -1
	}

	var rsi float64
	switch {
	case latest.RSI < 30:
		rsi = 1
	case latest.RSI > 70:
		rsi = -1
	}

	macd := -1.0
	if latest.MACD > 0 {
		macd = 1
	}

	signal := trend*f.trendWeight + rsi*f.rsiWeight + macd*f.macdWeight
	return models.ModelPrediction{
		Kind:           f.Kind(),
		PredictedPrice: latest.Price * (1 + signal*f.step),
		Confidence:     clampConfidence(f.manifest.Accuracy),
	}, nil
}
