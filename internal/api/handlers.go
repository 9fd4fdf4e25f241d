package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cryptonova/forecast-service/internal/database"
	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/forecast"
	"github.com/cryptonova/forecast-service/internal/marketdata"
	"github.com/cryptonova/forecast-service/internal/models"
	"github.com/cryptonova/forecast-service/internal/portfolio"
	"github.com/cryptonova/forecast-service/internal/predictor"
)

// Store is the storage surface the handlers use; *database.DB satisfies it
type Store interface {
	Ping() error
	CreatePosition(p *models.Position) error
	GetPositionByID(id int) (*models.Position, error)
	GetPositionsByUser(userID string) ([]*models.Position, error)
	UpdatePosition(p *models.Position) error
	DeletePosition(id int) error
	TrackSymbol(s *models.TrackedSymbol) error
	UntrackSymbol(symbol string) error
	GetTrackedSymbols() ([]*models.TrackedSymbol, error)
}

// HistoryProvider supplies the price history forecasts are computed from
type HistoryProvider interface {
	History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// Forecaster produces a per-symbol ensemble forecast
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, prices []models.PricePoint, horizonDays int) (*models.EnsembleForecast, error)
}

// AnalyticsService computes portfolio analytics for a user
type AnalyticsService interface {
	ComputeAnalytics(ctx context.Context, userID string, horizonDays int) (*portfolio.Analytics, error)
}

// EventPublisher emits domain events. A nil publisher disables publishing;
// publish failures never fail the originating request.
type EventPublisher interface {
	PublishForecastGenerated(ctx context.Context, forecast *models.EnsembleForecast, horizonDays int) error
	PublishSymbolTracked(ctx context.Context, symbol string) error
	PublishSymbolUntracked(ctx context.Context, symbol string) error
}

// Limits bounds the horizons and history window the API works with
type Limits struct {
	DefaultHorizon int
	MaxHorizon     int
	HistoryDays    int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store      Store
	provider   HistoryProvider
	forecaster Forecaster
	portfolio  AnalyticsService
	registry   *predictor.Registry
	producer   EventPublisher
	limits     Limits
	log        zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(store Store, provider HistoryProvider, forecaster Forecaster, analytics AnalyticsService, registry *predictor.Registry, producer EventPublisher, limits Limits, log zerolog.Logger) *Handler {
	return &Handler{
		store:      store,
		provider:   provider,
		forecaster: forecaster,
		portfolio:  analytics,
		registry:   registry,
		producer:   producer,
		limits:     limits,
		log:        log.With().Str("component", "api").Logger(),
	}
}

type predictRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe int    `json:"timeframe"`
}

type predictResponse struct {
	Symbol            string             `json:"symbol"`
	CurrentPrice      float64            `json:"current_price"`
	Predictions       map[string]float64 `json:"predictions"`
	Confidences       map[string]float64 `json:"confidences"`
	FuturePredictions []models.PathPoint `json:"future_predictions"`
	Timestamp         time.Time          `json:"timestamp"`
}

// Predict handles POST /predict
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	symbol := strings.ToUpper(req.Symbol)

	horizon := req.Timeframe
	if horizon == 0 {
		horizon = h.limits.DefaultHorizon
	}
	if horizon < 1 || horizon > h.limits.MaxHorizon {
		respondError(w, http.StatusBadRequest, "timeframe must be between 1 and "+strconv.Itoa(h.limits.MaxHorizon)+" days")
		return
	}

	prices, err := h.provider.History(r.Context(), symbol, h.limits.HistoryDays)
	if err != nil {
		if errors.Is(err, marketdata.ErrUnknownSymbol) {
			respondError(w, http.StatusNotFound, "unknown symbol: "+symbol)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("History fetch failed")
		respondError(w, http.StatusInternalServerError, "failed to fetch price history")
		return
	}

	fc, err := h.forecaster.Forecast(r.Context(), symbol, prices, horizon)
	if err != nil {
		switch {
		case errors.Is(err, forecast.ErrInvalidHorizon), errors.Is(err, features.ErrInsufficientData):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, forecast.ErrNoModels):
			respondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.log.Error().Err(err).Str("symbol", symbol).Msg("Forecast failed")
			respondError(w, http.StatusInternalServerError, "failed to generate forecast")
		}
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishForecastGenerated(r.Context(), fc, horizon); err != nil {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to publish forecast event")
		}
	}

	resp := predictResponse{
		Symbol:            fc.Symbol,
		CurrentPrice:      fc.CurrentPrice,
		Predictions:       make(map[string]float64, len(fc.Predictions)),
		Confidences:       make(map[string]float64, len(fc.Predictions)),
		FuturePredictions: fc.FuturePath,
		Timestamp:         fc.GeneratedAt,
	}
	for kind, pred := range fc.Predictions {
		resp.Predictions[kind.WireName()] = pred.PredictedPrice
		resp.Confidences[kind.WireName()] = pred.Confidence
	}

	respondJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status       string          `json:"status"`
	ModelsLoaded map[string]bool `json:"models_loaded"`
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.store.Ping(); err != nil {
		h.log.Warn().Err(err).Msg("Database ping failed")
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, healthResponse{
		Status:       status,
		ModelsLoaded: h.registry.LoadedByWireName(),
	})
}

// ModelsStatus handles GET /models/status
func (h *Handler) ModelsStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.Status())
}

type analyticsResponse struct {
	*portfolio.Analytics
	Timestamp time.Time `json:"timestamp"`
}

// PortfolioAnalytics handles GET /api/v1/portfolio/analytics
func (h *Handler) PortfolioAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	horizon := h.limits.DefaultHorizon
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > h.limits.MaxHorizon {
			respondError(w, http.StatusBadRequest, "horizon must be between 1 and "+strconv.Itoa(h.limits.MaxHorizon)+" days")
			return
		}
		horizon = v
	}

	result, err := h.portfolio.ComputeAnalytics(r.Context(), userID, horizon)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Analytics failed")
		respondError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	respondJSON(w, http.StatusOK, analyticsResponse{
		Analytics: result,
		Timestamp: time.Now().UTC(),
	})
}

type positionRequest struct {
	UserID        string          `json:"user_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
}

func (req *positionRequest) validate() string {
	if req.Symbol == "" {
		return "symbol is required"
	}
	if !req.Amount.IsPositive() {
		return "amount must be positive"
	}
	if req.PurchasePrice.IsNegative() {
		return "purchase_price cannot be negative"
	}
	return ""
}

// CreatePosition handles POST /api/v1/positions
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.PurchaseDate.IsZero() {
		req.PurchaseDate = time.Now().UTC()
	}

	position := &models.Position{
		UserID:        req.UserID,
		Symbol:        strings.ToUpper(req.Symbol),
		Name:          req.Name,
		Amount:        req.Amount,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  req.PurchaseDate,
	}
	if err := h.store.CreatePosition(position); err != nil {
		h.log.Error().Err(err).Str("symbol", position.Symbol).Msg("Position create failed")
		respondError(w, http.StatusInternalServerError, "failed to create position")
		return
	}

	respondJSON(w, http.StatusCreated, position)
}

// ListPositions handles GET /api/v1/positions
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	positions, err := h.store.GetPositionsByUser(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Position list failed")
		respondError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}

	respondJSON(w, http.StatusOK, positions)
}

// UpdatePosition handles PUT /api/v1/positions/{id}
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid position id")
		return
	}

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	position, err := h.store.GetPositionByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "position not found")
			return
		}
		h.log.Error().Err(err).Int("id", id).Msg("Position lookup failed")
		respondError(w, http.StatusInternalServerError, "failed to update position")
		return
	}

	position.Symbol = strings.ToUpper(req.Symbol)
	position.Name = req.Name
	position.Amount = req.Amount
	position.PurchasePrice = req.PurchasePrice
	if !req.PurchaseDate.IsZero() {
		position.PurchaseDate = req.PurchaseDate
	}

	if err := h.store.UpdatePosition(position); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "position not found")
			return
		}
		h.log.Error().Err(err).Int("id", id).Msg("Position update failed")
		respondError(w, http.StatusInternalServerError, "failed to update position")
		return
	}

	respondJSON(w, http.StatusOK, position)
}

// DeletePosition handles DELETE /api/v1/positions/{id}
func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid position id")
		return
	}

	if err := h.store.DeletePosition(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "position not found")
			return
		}
		h.log.Error().Err(err).Int("id", id).Msg("Position delete failed")
		respondError(w, http.StatusInternalServerError, "failed to delete position")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type trackSymbolRequest struct {
	Symbol      string `json:"symbol"`
	CoingeckoID string `json:"coingecko_id"`
}

// TrackSymbol handles POST /api/v1/symbols
func (h *Handler) TrackSymbol(w http.ResponseWriter, r *http.Request) {
	var req trackSymbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	symbol := strings.ToUpper(req.Symbol)
	coingeckoID := req.CoingeckoID
	if coingeckoID == "" {
		coingeckoID = marketdata.CoinID(symbol)
	}

	tracked := &models.TrackedSymbol{
		Symbol:      symbol,
		CoingeckoID: coingeckoID,
	}
	if err := h.store.TrackSymbol(tracked); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Symbol track failed")
		respondError(w, http.StatusInternalServerError, "failed to track symbol")
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishSymbolTracked(r.Context(), symbol); err != nil {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to publish symbol tracked event")
		}
	}

	respondJSON(w, http.StatusCreated, tracked)
}

// ListSymbols handles GET /api/v1/symbols
func (h *Handler) ListSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.store.GetTrackedSymbols()
	if err != nil {
		h.log.Error().Err(err).Msg("Symbol list failed")
		respondError(w, http.StatusInternalServerError, "failed to list symbols")
		return
	}

	respondJSON(w, http.StatusOK, symbols)
}

// UntrackSymbol handles DELETE /api/v1/symbols/{symbol}
func (h *Handler) UntrackSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if err := h.store.UntrackSymbol(symbol); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "symbol not tracked")
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Symbol untrack failed")
		respondError(w, http.StatusInternalServerError, "failed to untrack symbol")
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishSymbolUntracked(r.Context(), symbol); err != nil {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to publish symbol untracked event")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
