package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/platform"
	"github.com/rhinoxpay/rhinox-go/internal/ratelimit"
	"github.com/rhinoxpay/rhinox-go/internal/sandbox"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize sandbox state and rate limiter
	store := sandbox.NewStore(cfg)
	rateLimiter := ratelimit.NewLimiter(cfg, logger)

	// Setup Gin router
	handlers := sandbox.NewHandlers(cfg, store, logger).WithRateLimit(rateLimiter)
	router := handlers.SetupRoutes()

	// Setup HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.SandboxPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting sandbox API on port " + cfg.SandboxPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Create a shutdown context that works across platforms
	shutdownCtx, stop := platform.NewShutdownContext(context.Background())
	defer stop()
	<-shutdownCtx.Done()

	logger.Info("Shutting down sandbox...")

	// Stop rate limiter cleanup
	rateLimiter.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Sandbox exited")
}
