package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database
	DatabaseURL string
	SQLitePath  string

	// Redis. Empty disables the Redis capacity ledger; the database-backed
	// ledger is used instead.
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Sweeper
	SweepInterval    time.Duration
	TimeLowThreshold time.Duration

	// Worker
	WorkerHealthAddr string

	// Billing
	PaymentTimeout time.Duration

	// Tariff
	GarageHourlyRateCents int64
	EveningRateCents      int64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("PARKCORE_SQLITE_PATH", defaultSQLitePath()),
		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		SweepInterval:    getDurationEnv("SWEEP_INTERVAL", 30*time.Second),
		TimeLowThreshold: getDurationEnv("TIME_LOW_THRESHOLD", 10*time.Minute),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		PaymentTimeout: getDurationEnv("PAYMENT_TIMEOUT", 5*time.Second),

		GarageHourlyRateCents: getInt64Env("GARAGE_HOURLY_RATE_CENTS", 200),
		EveningRateCents:      getInt64Env("EVENING_RATE_CENTS", 500),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalMode reports whether the app runs without a PostgreSQL database.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".parkcore/parkcore.db"
	}
	return home + "/.parkcore/parkcore.db"
}
