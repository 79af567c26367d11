package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oli3535/data-visualization-fianl/internal/config"
	"github.com/oli3535/data-visualization-fianl/internal/dataset"
	"github.com/oli3535/data-visualization-fianl/internal/handlers"
	"github.com/oli3535/data-visualization-fianl/internal/services"
	"github.com/oli3535/data-visualization-fianl/pkg/logging"
	"github.com/oli3535/data-visualization-fianl/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("crime-dashboard-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting crime dashboard API server", logging.Fields{
		"version":      "1.0.0",
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"dataset_path": cfg.Dataset.Path,
		"cache_ttl":    cfg.Cache.TTL.String(),
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("crime_dashboard")

	// Initialize dataset loader with its TTL cache
	cache := dataset.NewCache(cfg.Cache.TTL)
	loader := dataset.NewLoader(cache, logger, metricsCollector)

	// Initialize services
	cleaningService := services.NewCleaningService(logger, metricsCollector)
	analyticsService := services.NewAnalyticsService(logger, metricsCollector)
	dashboardService := services.NewDashboardService(
		loader,
		cleaningService,
		analyticsService,
		cfg.Dataset.Path,
		logger,
		metricsCollector,
	)

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	dashboardHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
