package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the SDK and the sandbox server
type Config struct {
	// API gateway
	APIBaseURL  string
	AuthToken   string
	HTTPTimeout time.Duration
	LogLevel    string

	// Guarded transaction flow
	PinLength      int
	MaxPinAttempts int

	// Reference data cache (0 = fresh for the whole session)
	RefDataCacheTTL time.Duration

	// Sandbox server
	SandboxPort string
	SandboxPin  string

	// Rate limiting (sandbox)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  getEnv("RHINOX_API_BASE_URL", "https://api.rhinoxpay.com/v1"),
		AuthToken:   getEnv("RHINOX_AUTH_TOKEN", ""),
		HTTPTimeout: time.Duration(mustAtoi(getEnv("RHINOX_HTTP_TIMEOUT_SECONDS", "15"))) * time.Second,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		PinLength:      mustAtoi(getEnv("RHINOX_PIN_LENGTH", "5")),
		MaxPinAttempts: mustAtoi(getEnv("RHINOX_MAX_PIN_ATTEMPTS", "3")),

		RefDataCacheTTL: time.Duration(mustAtoi(getEnv("RHINOX_REFDATA_CACHE_TTL_SECONDS", "0"))) * time.Second,

		SandboxPort: getEnv("SANDBOX_PORT", "8082"),
		SandboxPin:  getEnv("SANDBOX_PIN", "12345"),

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: mustAtoi(getEnv("RATE_LIMIT_REQUESTS", "100")),
		RateLimitWindow:   time.Duration(mustAtoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))) * time.Second,
		RateLimitBurst:    mustAtoi(getEnv("RATE_LIMIT_BURST", "10")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the SDK cannot work with
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return fmt.Errorf("API base URL must not be empty")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %v", cfg.HTTPTimeout)
	}
	if cfg.PinLength < 4 || cfg.PinLength > 8 {
		return fmt.Errorf("PIN length must be between 4 and 8, got %d", cfg.PinLength)
	}
	if cfg.MaxPinAttempts < 1 {
		return fmt.Errorf("max PIN attempts must be at least 1, got %d", cfg.MaxPinAttempts)
	}
	return nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
