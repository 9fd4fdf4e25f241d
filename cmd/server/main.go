package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cryptonova/forecast-service/internal/api"
	"github.com/cryptonova/forecast-service/internal/config"
	"github.com/cryptonova/forecast-service/internal/database"
	"github.com/cryptonova/forecast-service/internal/features"
	"github.com/cryptonova/forecast-service/internal/forecast"
	"github.com/cryptonova/forecast-service/internal/kafka"
	"github.com/cryptonova/forecast-service/internal/marketdata"
	"github.com/cryptonova/forecast-service/internal/portfolio"
	"github.com/cryptonova/forecast-service/internal/predictor"
	"github.com/cryptonova/forecast-service/internal/scheduler"
	"github.com/cryptonova/forecast-service/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})

	log.Info().Msg("Starting forecast service")

	// Database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// History cache; an empty REDIS_ADDR runs without one
	var cache marketdata.HistoryCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		cache = marketdata.NewCache(redisClient, cfg.Redis.CacheTTL, log)
	}

	// Market data layers: cache -> Postgres -> CoinGecko
	coingecko := marketdata.NewCoinGeckoClient(cfg.MarketData.BaseURL, cfg.MarketData.Timeout, log)
	provider := marketdata.NewLayeredProvider(cache, db, coingecko, log)

	// Forecasting engine
	registry := predictor.LoadRegistry(cfg.Models.Dir, log)
	engineer, err := features.NewEngineer(cfg.Engine.FeatureLookback)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid feature lookback")
	}
	generator := forecast.NewGenerator(cfg.Engine.ConfidenceDecay, cfg.Engine.ConfidenceFloor)
	forecaster := forecast.NewService(engineer, registry.Predictors(), generator, log)
	analytics := portfolio.NewService(db, provider, forecaster, cfg.Engine.HistoryDays, log)

	// Event bus
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ForecastTopic)
	defer producer.Close()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.PriceTopic, cfg.Kafka.GroupID, db, log)
	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			log.Error().Err(err).Msg("Price consumer stopped")
		}
	}()

	// Price sync scheduler
	sched := scheduler.New(log)
	if cfg.Sync.Enabled {
		job := scheduler.NewPriceSyncJob(db, provider, db, cfg.Sync.Days, cfg.Sync.RetentionDays, log)
		if err := sched.AddJob(cfg.Sync.Schedule, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register price sync job")
		}
		go func() {
			if err := sched.RunNow(job); err != nil {
				log.Error().Err(err).Msg("Initial price sync failed")
			}
		}()
	}
	sched.Start()

	// HTTP server
	handler := api.NewHandler(db, provider, forecaster, analytics, registry, producer, api.Limits{
		DefaultHorizon: cfg.Engine.DefaultHorizon,
		MaxHorizon:     cfg.Engine.MaxHorizon,
		HistoryDays:    cfg.Engine.HistoryDays,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      api.SetupRoutes(handler, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()
	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
