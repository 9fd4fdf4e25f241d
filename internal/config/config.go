package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Models     ModelsConfig
	Engine     EngineConfig
	Sync       SyncConfig
	MarketData MarketDataConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig holds the history cache configuration.
// An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string
	ForecastTopic string
	PriceTopic    string
	GroupID       string
}

// ModelsConfig locates the trained model manifests
type ModelsConfig struct {
	Dir string
}

// EngineConfig holds the forecasting engine tunables
type EngineConfig struct {
	FeatureLookback int
	HistoryDays     int
	DefaultHorizon  int
	MaxHorizon      int
	ConfidenceDecay float64
	ConfidenceFloor float64
}

// SyncConfig holds the price sync scheduler configuration
type SyncConfig struct {
	Enabled       bool
	Schedule      string
	Days          int
	RetentionDays int
}

// MarketDataConfig holds the upstream market data API configuration
type MarketDataConfig struct {
	BaseURL string
	Timeout time.Duration
}

// LoggingConfig holds log output configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables.
// A .env file is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "cryptonova"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ForecastTopic: getEnv("KAFKA_TOPIC", "forecast-events"),
			PriceTopic:    getEnv("KAFKA_PRICE_TOPIC", "price-updates"),
			GroupID:       getEnv("KAFKA_GROUP_ID", "forecast-service"),
		},
		Models: ModelsConfig{
			Dir: getEnv("MODEL_DIR", "./models"),
		},
		Engine: EngineConfig{
			FeatureLookback: getEnvAsInt("FEATURE_LOOKBACK", 10),
			HistoryDays:     getEnvAsInt("HISTORY_DAYS", 90),
			DefaultHorizon:  getEnvAsInt("DEFAULT_HORIZON_DAYS", 7),
			MaxHorizon:      getEnvAsInt("MAX_HORIZON_DAYS", 365),
			ConfidenceDecay: getEnvAsFloat("CONFIDENCE_DECAY", 0.5),
			ConfidenceFloor: getEnvAsFloat("CONFIDENCE_FLOOR", 50),
		},
		Sync: SyncConfig{
			Enabled:       getEnvAsBool("SYNC_ENABLED", true),
			Schedule:      getEnv("SYNC_SCHEDULE", "0 */30 * * * *"),
			Days:          getEnvAsInt("SYNC_DAYS", 90),
			RetentionDays: getEnvAsInt("HISTORY_RETENTION_DAYS", 365),
		},
		MarketData: MarketDataConfig{
			BaseURL: getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
			Timeout: getEnvAsDuration("COINGECKO_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
