package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/solarwatch/panel-insights/internal/api/http"
	"github.com/solarwatch/panel-insights/internal/config"
	"github.com/solarwatch/panel-insights/internal/fleet"
	"github.com/solarwatch/panel-insights/internal/prediction"
	"github.com/solarwatch/panel-insights/internal/prediction/mlclient"
	"github.com/solarwatch/panel-insights/internal/scheduler"
	"github.com/solarwatch/panel-insights/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	seed := cfg.SimSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Shared HTTP client for outbound model calls. Per-call deadlines come
	// from the mlclient contexts.
	httpClient := &http.Client{}

	// In-memory snapshot store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Remote model client with circuit breaker, local calculators behind it.
	remote := mlclient.New(httpClient, cfg.MLAPIURL, cfg.MLTimeout, cfg.MLBatchTimeout)
	estimator := prediction.NewEstimator()
	classifier := prediction.NewClassifier(rand.New(rand.NewSource(seed)))

	// Prediction façade orchestrating remote calls and local fallback.
	service := prediction.NewService(remote, estimator, classifier)

	// Simulated fleet refreshed on a schedule.
	sampler := fleet.NewSampler(seed)
	sched := scheduler.New(cfg.Panels, cfg.RefreshInterval, service, sampler, memStore)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "panel-insights",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint. The service is healthy regardless of the
	// remote model; mlModel reports degraded confidence, not failure.
	app.Get("/health", func(c *fiber.Ctx) error {
		mlStatus := "unavailable"
		if service.RemoteHealthy(c.Context()) {
			mlStatus = "available"
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "panel-insights",
			"mlModel": mlStatus,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, memStore)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
