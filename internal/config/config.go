package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSecret is returned by Load when no session signing key is set.
var ErrMissingSecret = errors.New("config: SECRET_KEY (or FLASK_SECRET_KEY) must be set")

// ProviderConfig holds settings for the places-search API.
type ProviderConfig struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Config holds runtime settings for the server.
type Config struct {
	Port      string
	Env       string
	SecretKey string

	Provider ProviderConfig

	CacheTTL   time.Duration
	SessionTTL time.Duration
}

// Load reads configuration from the environment, after loading .env if
// one exists. It fails when no secret key is configured.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "5000"),
		Env:       getEnv("APP_ENV", "development"),
		SecretKey: getEnvWithFallback("SECRET_KEY", "FLASK_SECRET_KEY", ""),
		Provider: ProviderConfig{
			APIKey:   getEnv("SERPAPI_KEY", ""),
			BaseURL:  getEnv("SERPAPI_BASE_URL", "https://serpapi.com/search.json"),
			Timeout:  time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 15)) * time.Second,
			RetryMax: getEnvInt("PROVIDER_RETRY_MAX", 0),
		},
		CacheTTL:   time.Duration(getEnvInt("CACHE_TTL_MINUTES", 30)) * time.Minute,
		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}

	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	return cfg, nil
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvWithFallback tries primary key first, then fallback key
func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil || intVal < 0 {
		return defaultValue
	}
	return intVal
}
