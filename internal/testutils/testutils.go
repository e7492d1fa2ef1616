package testutils

import (
	"net/http/httptest"
	"time"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
)

// MockLogger creates a silent logger for testing
func MockLogger() *logger.Logger {
	return logger.NewNop()
}

// MockConfig creates a mock configuration for testing
func MockConfig() *config.Config {
	return &config.Config{
		APIBaseURL:  "https://api.test.rhinoxpay.com/v1",
		AuthToken:   "test-token",
		HTTPTimeout: 5 * time.Second,
		LogLevel:    "debug",

		PinLength:      5,
		MaxPinAttempts: 3,

		RefDataCacheTTL: 0,

		SandboxPort: "8082",
		SandboxPin:  "12345",

		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,
		RateLimitBurst:    10,
	}
}

// MockConfigWithServer points the SDK at a test server.
func MockConfigWithServer(server *httptest.Server) *config.Config {
	cfg := MockConfig()
	cfg.APIBaseURL = server.URL
	return cfg
}
