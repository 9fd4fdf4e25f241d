package models

import "time"

// ModelKind identifies a predictor variant
type ModelKind string

// Predictor variant constants
const (
	KindSequence     ModelKind = "sequence"
	KindTreeEnsemble ModelKind = "tree_ensemble"
	KindLinear       ModelKind = "linear"
)

// WireName returns the key this variant uses in API responses
func (k ModelKind) WireName() string {
	switch k {
	case KindSequence:
		return "lstm"
	case KindTreeEnsemble:
		return "random_forest"
	case KindLinear:
		return "linear_regression"
	}
	return string(k)
}

// DisplayType returns the human-readable model type for status reporting
func (k ModelKind) DisplayType() string {
	switch k {
	case KindSequence:
		return "Neural Network"
	case KindTreeEnsemble:
		return "Ensemble Model"
	case KindLinear:
		return "Linear Model"
	}
	return "Unknown"
}

// AllModelKinds lists the variants in fixed reporting order
func AllModelKinds() []ModelKind {
	return []ModelKind{KindSequence, KindTreeEnsemble, KindLinear}
}

// ModelPrediction is a single model's next-value estimate.
// Confidence is always normalized to [0,100].
type ModelPrediction struct {
	Kind           ModelKind `json:"model_kind"`
	PredictedPrice float64   `json:"predicted_price"`
	Confidence     float64   `json:"confidence"`
}

// PathPoint is one step of a generated future price path.
// Date is a calendar day formatted YYYY-MM-DD.
type PathPoint struct {
	Date           string  `json:"date"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
}

// EnsembleForecast is an immutable snapshot of one forecasting pass for a
// symbol. A new request always produces a new forecast, never an in-place
// update. Predictions holds only the models that produced an estimate;
// unavailable models are absent, not zeroed.
type EnsembleForecast struct {
	Symbol          string                        `json:"symbol"`
	CurrentPrice    float64                       `json:"current_price"`
	Predictions     map[ModelKind]ModelPrediction `json:"predictions"`
	FusedPrice      float64                       `json:"fused_price"`
	FusedConfidence float64                       `json:"fused_confidence"`
	FuturePath      []PathPoint                   `json:"future_path"`
	GeneratedAt     time.Time                     `json:"generated_at"`
}

// FinalPathPrice returns the last future-path price, or the current price
// when the path is empty
func (f *EnsembleForecast) FinalPathPrice() float64 {
	if len(f.FuturePath) == 0 {
		return f.CurrentPrice
	}
	return f.FuturePath[len(f.FuturePath)-1].PredictedPrice
}

// ModelStatus describes one predictor's load state for status reporting
type ModelStatus struct {
	Loaded   bool    `json:"loaded"`
	Type     string  `json:"type"`
	Accuracy float64 `json:"accuracy"`
}
