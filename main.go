package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/globalprice/products-api/internal/app/service"
	"github.com/globalprice/products-api/internal/domain"
	"github.com/globalprice/products-api/internal/infrastructure/config"
	"github.com/globalprice/products-api/internal/infrastructure/http"
	"github.com/globalprice/products-api/internal/infrastructure/http/handler"
	"github.com/globalprice/products-api/internal/infrastructure/pricing"
	"github.com/globalprice/products-api/internal/infrastructure/repository/memory"
	"github.com/globalprice/products-api/internal/infrastructure/repository/postgres"
	"github.com/globalprice/products-api/internal/infrastructure/repository/sqlite"
	"github.com/globalprice/products-api/internal/infrastructure/telemetry"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize OpenTelemetry (no-op providers when export is disabled)
	var telem *telemetry.Telemetry
	if cfg.OTLP.ExportEnabled {
		t, err := telemetry.NewTelemetry(&cfg.OTLP)
		if err != nil {
			log.Fatalf("Failed to initialize telemetry: %v", err)
		}
		telem = t
	} else {
		telem = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure telemetry is shutdown on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	// Get tracer, meter, and logger instances
	tracer := telem.TracerProvider.Tracer("products-api")
	meter := telem.MeterProvider.Meter("products-api")
	logger := telem.Logger

	logger.Info("Starting Products API")

	// Initialize the configured repository backend
	var repo domain.ProductRepository
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.Storage.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		pgRepo := postgres.NewProductRepository(pool, tracer, logger)
		if err := pgRepo.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate postgres schema: %v", err)
		}
		repo = pgRepo
		logger.Info("Storage backend: postgres")
	case config.BackendMemory:
		repo = memory.NewProductRepository(tracer, logger)
		logger.Info("Storage backend: memory")
	default:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite database: %v", err)
		}
		defer db.Close()

		liteRepo := sqlite.NewProductRepository(db, tracer, logger)
		if err := liteRepo.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate sqlite schema: %v", err)
		}
		repo = liteRepo
		logger.Info("Storage backend: sqlite")
	}

	// Initialize pricing service client
	pricingClient := pricing.NewClient(&cfg.Pricing, logger)

	// Initialize services
	productService := service.NewProductService(repo, tracer, meter, logger)
	pricingService := service.NewPricingService(repo, pricingClient, tracer, meter, logger)

	// Initialize handler
	productHandler := handler.NewProductHandler(productService, pricingService, logger)

	// Initialize HTTP server
	server := http.NewServer(&cfg.Server, productHandler, telem)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", "error", err.Error())
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	logger.Info("Server stopped")
}
