package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(log))

	// Core forecasting endpoints
	r.HandleFunc("/predict", handler.Predict).Methods("POST")
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.HandleFunc("/models/status", handler.ModelsStatus).Methods("GET")

	// Portfolio and watchlist routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/portfolio/analytics", handler.PortfolioAnalytics).Methods("GET")
	api.HandleFunc("/positions", handler.CreatePosition).Methods("POST")
	api.HandleFunc("/positions", handler.ListPositions).Methods("GET")
	api.HandleFunc("/positions/{id}", handler.UpdatePosition).Methods("PUT")
	api.HandleFunc("/positions/{id}", handler.DeletePosition).Methods("DELETE")
	api.HandleFunc("/symbols", handler.TrackSymbol).Methods("POST")
	api.HandleFunc("/symbols", handler.ListSymbols).Methods("GET")
	api.HandleFunc("/symbols/{symbol}", handler.UntrackSymbol).Methods("DELETE")

	return r
}
