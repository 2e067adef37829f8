package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"climate-pipeline/internal/api"
	"climate-pipeline/internal/config"
	"climate-pipeline/internal/services"
	"climate-pipeline/internal/storage"
	"climate-pipeline/pkg/client"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Climate Pipeline Service")

	serverCfg := config.LoadServerConfig()

	// Configuration is re-read per run; the loader falls back to the
	// environment-backed secret store for the API key.
	resolver := config.NewEnvCredentialResolver(logger)
	loader := config.NewLoader(serverCfg.ConfigPath, resolver, logger)

	clientCfg := client.ClientConfig{Timeout: client.DefaultTimeout}
	aqiClient := client.NewAirQualityClient(clientCfg, logger)
	weatherClient := client.NewWeatherClient(clientCfg, logger)
	recorder := storage.NewCSVRecorder(logger)

	pipeline := services.NewPipeline(loader, aqiClient, weatherClient, recorder, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(pipeline, loader, recorder, logger)
	api.SetupRoutes(app, handler, logger)

	// Start server in goroutine
	go func() {
		addr := ":" + serverCfg.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
