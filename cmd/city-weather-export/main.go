package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/city-weather-export/internal/api/http"
	"github.com/i474232898/city-weather-export/internal/app"
	"github.com/i474232898/city-weather-export/internal/config"
	"github.com/i474232898/city-weather-export/internal/scheduler"
	applog "github.com/i474232898/city-weather-export/pkg/logger"
)

const (
	serviceName = "city-weather-export"
	runTimeout  = 5 * time.Minute
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := applog.NewLogger(cfg.LogsPath, serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	container, err := app.Build(cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer func() {
		if err := container.Close(); err != nil {
			l.Error().Err(err).Msg("failed to sync http logger")
		}
	}()

	// Scheduler that periodically generates exports.
	sched := scheduler.New(cfg.GenerateInterval, runTimeout, container.Generator, l.With().Str("component", "scheduler").Logger())
	if err := sched.Start(); err != nil {
		l.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	fiberApp := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          runTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	fiberApp.Use(logger.New())
	fiberApp.Use(recover.New())

	httpapi.RegisterRoutes(fiberApp, httpapi.Deps{
		Generator:       container.Generator,
		Runs:            container.Runs,
		Gatherer:        container.Metrics.Registry,
		DataDir:         cfg.DataDir,
		CSVPrefix:       cfg.ExportFilenamePrefix,
		GenerateTimeout: runTimeout,
	})

	go func() {
		l.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			l.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	l.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("error during shutdown")
	}
}
