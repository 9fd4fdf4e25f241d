package predictor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/models"
)

func vec(price, ma7, ma14, ma30, rsi, macd float64) features.Vector {
	return features.Vector{
		Price: price,
		MA7:   ma7,
		MA14:  ma14,
		MA30:  ma30,
		RSI:   rsi,
		MACD:  macd,
	}
}

func repeatVec(v features.Vector, n int) []features.Vector {
	out := make([]features.Vector, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func sequenceManifest() *Manifest {
	return &Manifest{
		Kind:     string(models.KindSequence),
		Accuracy: 94.2,
		Params: map[string]float64{
			"window":          10,
			"momentum_weight": 0.5,
			"rsi_weight":      0.3,
		},
	}
}

func forestManifest() *Manifest {
	return &Manifest{
		Kind:     string(models.KindTreeEnsemble),
		Accuracy: 91.8,
		Params: map[string]float64{
			"trend_weight": 0.4,
			"rsi_weight":   0.3,
			"macd_weight":  0.3,
			"step":         0.04,
		},
	}
}

func linearManifest() *Manifest {
	return &Manifest{
		Kind:     string(models.KindLinear),
		Accuracy: 87.5,
		Params:   map[string]float64{"window": 7},
	}
}

func TestSequenceModel(t *testing.T) {
	t.Run("unloaded model is unavailable", func(t *testing.T) {
		m := NewSequenceModel(nil)
		assert.False(t, m.Loaded())

		_, err := m.Predict(repeatVec(vec(100, 100, 100, 100, 50, 0), 10))
		assert.True(t, errors.Is(err, ErrModelUnavailable))
	})

	t.Run("short history is insufficient", func(t *testing.T) {
		m := NewSequenceModel(sequenceManifest())
		_, err := m.Predict(repeatVec(vec(100, 100, 100, 100, 50, 0), 9))
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})

	t.Run("overbought flat market reverts down", func(t *testing.T) {
		// Flat MAs kill the momentum term; RSI 80 leaves only the
		// mean-reversion term: 100 * (1 + (50-80)/100 * 0.3) = 91.
		m := NewSequenceModel(sequenceManifest())
		pred, err := m.Predict(repeatVec(vec(100, 100, 100, 100, 80, 0), 10))
		require.NoError(t, err)

		assert.Equal(t, models.KindSequence, pred.Kind)
		assert.InDelta(t, 91.0, pred.PredictedPrice, 1e-9)
		assert.Equal(t, 94.2, pred.Confidence)
	})

	t.Run("uptrend with neutral RSI predicts up", func(t *testing.T) {
		m := NewSequenceModel(sequenceManifest())
		pred, err := m.Predict(repeatVec(vec(100, 105, 102, 100, 50, 1), 10))
		require.NoError(t, err)
		assert.Greater(t, pred.PredictedPrice, 100.0)
	})

	t.Run("deterministic", func(t *testing.T) {
		m := NewSequenceModel(sequenceManifest())
		history := repeatVec(vec(100, 104, 101, 99, 62, 0.5), 12)

		first, err := m.Predict(history)
		require.NoError(t, err)
		second, err := m.Predict(history)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestForestModel(t *testing.T) {
	t.Run("unloaded model is unavailable", func(t *testing.T) {
		m := NewForestModel(nil)
		_, err := m.Predict([]features.Vector{vec(100, 100, 100, 100, 50, 0)})
		assert.True(t, errors.Is(err, ErrModelUnavailable))
	})

	t.Run("empty history is insufficient", func(t *testing.T) {
		m := NewForestModel(forestManifest())
		_, err := m.Predict(nil)
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})

	t.Run("all votes bullish", func(t *testing.T) {
		// trend +1, RSI oversold +1, MACD positive +1:
		// signal = 0.4 + 0.3 + 0.3 = 1, price = 100 * 1.04.
		m := NewForestModel(forestManifest())
		pred, err := m.Predict([]features.Vector{vec(100, 106, 103, 100, 25, 2)})
		require.NoError(t, err)

		assert.Equal(t, models.KindTreeEnsemble, pred.Kind)
		assert.InDelta(t, 104.0, pred.PredictedPrice, 1e-9)
		assert.Equal(t, 91.8, pred.Confidence)
	})

	t.Run("all votes bearish", func(t *testing.T) {
		m := NewForestModel(forestManifest())
		pred, err := m.Predict([]features.Vector{vec(100, 95, 98, 100, 75, -2)})
		require.NoError(t, err)
		assert.InDelta(t, 96.0, pred.PredictedPrice, 1e-9)
	})

	t.Run("mixed votes use only the MACD step", func(t *testing.T) {
		// Flat MAs and neutral RSI vote 0; positive MACD contributes 0.3.
		m := NewForestModel(forestManifest())
		pred, err := m.Predict([]features.Vector{vec(100, 100, 100, 100, 50, 1)})
		require.NoError(t, err)
		assert.InDelta(t, 101.2, pred.PredictedPrice, 1e-9)
	})

	t.Run("only the newest vector matters", func(t *testing.T) {
		m := NewForestModel(forestManifest())
		history := append(repeatVec(vec(1, 1, 1, 1, 99, -5), 5), vec(100, 106, 103, 100, 25, 2))
		pred, err := m.Predict(history)
		require.NoError(t, err)
		assert.InDelta(t, 104.0, pred.PredictedPrice, 1e-9)
	})
}

func TestLinearModel(t *testing.T) {
	t.Run("unloaded model is unavailable", func(t *testing.T) {
		m := NewLinearModel(nil)
		_, err := m.Predict([]features.Vector{vec(100, 0, 0, 0, 0, 0)})
		assert.True(t, errors.Is(err, ErrModelUnavailable))
	})

	t.Run("empty history is insufficient", func(t *testing.T) {
		m := NewLinearModel(linearManifest())
		_, err := m.Predict(nil)
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})

	t.Run("extrapolates a perfect line", func(t *testing.T) {
		m := NewLinearModel(linearManifest())
		history := make([]features.Vector, 7)
		for i := range history {
			history[i] = vec(100+2*float64(i), 0, 0, 0, 0, 0)
		}

		pred, err := m.Predict(history)
		require.NoError(t, err)
		assert.Equal(t, models.KindLinear, pred.Kind)
		assert.InDelta(t, 114.0, pred.PredictedPrice, 1e-9)
		assert.Equal(t, 87.5, pred.Confidence)
	})

	t.Run("fits only the trailing window", func(t *testing.T) {
		m := NewLinearModel(linearManifest())
		history := repeatVec(vec(500, 0, 0, 0, 0, 0), 10)
		for i := 0; i < 7; i++ {
			history = append(history, vec(100+2*float64(i), 0, 0, 0, 0, 0))
		}

		pred, err := m.Predict(history)
		require.NoError(t, err)
		assert.InDelta(t, 114.0, pred.PredictedPrice, 1e-9)
	})

	t.Run("single point predicts no change", func(t *testing.T) {
		m := NewLinearModel(linearManifest())
		pred, err := m.Predict([]features.Vector{vec(123.45, 0, 0, 0, 0, 0)})
		require.NoError(t, err)
		assert.Equal(t, 123.45, pred.PredictedPrice)
	})
}
