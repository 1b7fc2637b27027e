// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Algorand settings
	IndexerURL   string
	IndexerToken string
	Network      string // reported by GET /health

	// Model resources, loaded once at startup
	EncoderPath string // versioned JSON address→index mapping
	ModelPath   string // versioned JSON GNN weights

	// Freeze side effect
	FreezeTimeout time.Duration

	// Hardening
	RateLimitRPM int

	// Observability
	OTLPEndpoint string
}

// Algorand Testnet defaults; the public Algonode indexer needs no token.
const (
	DefaultIndexerURL    = "https://testnet-idx.algonode.cloud"
	DefaultNetwork       = "Algorand Testnet"
	DefaultEncoderPath   = "label_encoder.json"
	DefaultModelPath     = "model_weights.json"
	DefaultPort          = "8080"
	DefaultEnv           = "development"
	DefaultLogLevel      = "info"
	DefaultRateLimit     = 120
	DefaultFreezeTimeout = 30 * time.Second
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", DefaultPort),
		Env:           getEnv("ENV", DefaultEnv),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
		IndexerURL:    getEnv("INDEXER_URL", DefaultIndexerURL),
		IndexerToken:  os.Getenv("INDEXER_TOKEN"), // Optional for public indexers
		Network:       getEnv("NETWORK", DefaultNetwork),
		EncoderPath:   getEnv("ENCODER_PATH", DefaultEncoderPath),
		ModelPath:     getEnv("MODEL_PATH", DefaultModelPath),
		FreezeTimeout: time.Duration(getEnvInt64("FREEZE_TIMEOUT_SECONDS", int64(DefaultFreezeTimeout/time.Second))) * time.Second,
		RateLimitRPM:  int(getEnvInt64("RATE_LIMIT_RPM", int64(DefaultRateLimit))),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.IndexerURL == "" {
		return fmt.Errorf("INDEXER_URL is required")
	}
	if c.EncoderPath == "" {
		return fmt.Errorf("ENCODER_PATH is required")
	}
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
