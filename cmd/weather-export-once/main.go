package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/i474232898/city-weather-export/internal/app"
	"github.com/i474232898/city-weather-export/internal/config"
	"github.com/i474232898/city-weather-export/internal/weather"
	applog "github.com/i474232898/city-weather-export/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := applog.NewLogger(cfg.LogsPath, "weather-export-once", cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	container, err := app.Build(cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	run, err := container.Generator.Generate(ctx)
	stop()
	_ = container.Close()

	switch {
	case errors.Is(err, weather.ErrNoData):
		fmt.Println("No data fetched.")
	case err != nil:
		l.Error().Err(err).Msg("generation failed")
		os.Exit(1)
	default:
		fmt.Printf("Weather data exported to %s\n", run.CSVPath)
		fmt.Printf("Temperature chart saved to %s\n", run.ChartPath)
	}
}
