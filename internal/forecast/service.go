package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/models"
	"github.com/cryptonova/forecast-service/internal/predictor"
)

// Service orchestrates one asset's forecasting pass: feature engineering,
// the independent predictor runs, fusion, and path generation. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	engineer   *features.Engineer
	predictors []predictor.Predictor
	generator  *Generator
	now        func() time.Time
	log        zerolog.Logger
}

// NewService creates a forecast service over the given predictors
func NewService(engineer *features.Engineer, predictors []predictor.Predictor, generator *Generator, log zerolog.Logger) *Service {
	return &Service{
		engineer:   engineer,
		predictors: predictors,
		generator:  generator,
		now:        time.Now,
		log:        log.With().Str("component", "forecast").Logger(),
	}
}

// Forecast produces a fresh EnsembleForecast for one symbol. Unavailable
// models are excluded from fusion; if the feature window is too short or
// every model is unavailable the whole forecast fails. Horizon is validated
// before any work happens.
func (s *Service) Forecast(ctx context.Context, symbol string, prices []models.PricePoint, horizonDays int) (*models.EnsembleForecast, error) {
	if horizonDays < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizonDays)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series, err := s.engineer.ComputeSeries(prices)
	if err != nil {
		return nil, fmt.Errorf("failed to compute features for %s: %w", symbol, err)
	}
	currentPrice := prices[len(prices)-1].Price

	predictions := make(map[models.ModelKind]models.ModelPrediction, len(s.predictors))
	for _, p := range s.predictors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pred, err := p.Predict(series)
		if err != nil {
			if errors.Is(err, predictor.ErrModelUnavailable) || errors.Is(err, predictor.ErrInsufficientHistory) {
				s.log.Debug().
					Err(err).
					Str("symbol", symbol).
					Str("model", p.Kind().WireName()).
					Msg("Model excluded from fusion")
				continue
			}
			return nil, fmt.Errorf("failed to predict %s with %s: %w", symbol, p.Kind(), err)
		}
		predictions[p.Kind()] = pred
	}

	fusedPrice, fusedConfidence, err := Fuse(predictions)
	if err != nil {
		return nil, fmt.Errorf("failed to fuse predictions for %s: %w", symbol, err)
	}

	now := s.now()
	path, err := s.generator.GeneratePath(currentPrice, fusedPrice, fusedConfidence, horizonDays, now)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("symbol", symbol).
		Float64("current_price", currentPrice).
		Float64("fused_price", fusedPrice).
		Int("models", len(predictions)).
		Int("horizon_days", horizonDays).
		Msg("Forecast generated")

	return &models.EnsembleForecast{
		Symbol:          symbol,
		CurrentPrice:    currentPrice,
		Predictions:     predictions,
		FusedPrice:      fusedPrice,
		FusedConfidence: fusedConfidence,
		FuturePath:      path,
		GeneratedAt:     now,
	}, nil
}
