package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Settlement
	TxTimeout           time.Duration
	StrictScheduleOrder bool
	SystemActorID       uint

	// JWT
	JWTSecret string

	// Background Workers
	WorkerCount       int
	ReconcileInterval time.Duration

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseDriver:      getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		TxTimeout:           getEnvAsDuration("TX_TIMEOUT", 10*time.Second),
		StrictScheduleOrder: getEnvAsBool("STRICT_SCHEDULE_ORDER", false),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 2),
		ReconcileInterval:   getEnvAsDuration("RECONCILE_INTERVAL", time.Hour),
		AllowedOrigins:      getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
	}

	systemActorID, err := getEnvAsUint("SYSTEM_ACTOR_ID", 1)
	if err != nil {
		return nil, err
	}
	cfg.SystemActorID = systemActorID

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", cfg.DatabaseDriver)
	}

	if cfg.SystemActorID == 0 {
		return nil, fmt.Errorf("SYSTEM_ACTOR_ID must be a positive user id")
	}

	if cfg.TxTimeout <= 0 {
		return nil, fmt.Errorf("TX_TIMEOUT must be positive, got %s", cfg.TxTimeout)
	}

	if cfg.ReconcileInterval <= 0 {
		return nil, fmt.Errorf("RECONCILE_INTERVAL must be positive, got %s", cfg.ReconcileInterval)
	}

	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("WORKER_COUNT must be positive, got %d", cfg.WorkerCount)
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsUint reads an environment variable as an unsigned id. Unlike the
// other helpers a malformed value is an error, not the default.
func getEnvAsUint(key string, defaultValue uint) (uint, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(strings.TrimSpace(valueStr), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, valueStr)
	}
	return uint(value), nil
}

// getEnvAsBool reads an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads an environment variable as a Go duration ("30s", "1h")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
