package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all client configuration
type Config struct {
	Env         string
	Recommender RecommenderConfig
	Cache       CacheConfig
	Redis       RedisConfig
	OTEL        OTELConfig
}

// RecommenderConfig holds the recommendation API configuration
type RecommenderConfig struct {
	BaseURL            string
	Timeout            time.Duration
	RetryAttempts      int
	InteractionTimeout time.Duration
}

// CacheConfig holds result caching configuration
type CacheConfig struct {
	Enabled    bool
	TTLSeconds int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Recommender: RecommenderConfig{
			BaseURL:            strings.TrimRight(getEnv("RECOMMENDER_BASE_URL", "http://127.0.0.1:8000"), "/"),
			Timeout:            getEnvAsDuration("RECOMMENDER_TIMEOUT", 10*time.Second),
			RetryAttempts:      getEnvAsInt("RECOMMENDER_RETRY_ATTEMPTS", 2),
			InteractionTimeout: getEnvAsDuration("INTERACTION_TIMEOUT", 5*time.Second),
		},
		Cache: CacheConfig{
			Enabled:    getEnvAsBool("CACHE_ENABLED", false),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 120),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "quickbites-client"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Recommender.BaseURL == "" {
		return nil, fmt.Errorf("RECOMMENDER_BASE_URL must not be empty")
	}
	if cfg.Recommender.Timeout <= 0 {
		return nil, fmt.Errorf("RECOMMENDER_TIMEOUT must be positive, got %s", cfg.Recommender.Timeout)
	}

	return cfg, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
