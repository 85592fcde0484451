// Package app wires configuration into the runnable components.
package app

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather-export/internal/cities"
	"github.com/i474232898/city-weather-export/internal/config"
	"github.com/i474232898/city-weather-export/internal/generator"
	"github.com/i474232898/city-weather-export/internal/metrics"
	"github.com/i474232898/city-weather-export/internal/report"
	"github.com/i474232898/city-weather-export/internal/store"
	"github.com/i474232898/city-weather-export/internal/weather"
	"github.com/i474232898/city-weather-export/internal/weather/providers"
	"github.com/i474232898/city-weather-export/pkg/logger"
)

// Container holds initialized dependencies.
type Container struct {
	Metrics   *metrics.Metrics
	Runs      *store.MemoryStore
	Generator *generator.Service

	httpLogger *zap.Logger
}

// Build creates every component from cfg.
func Build(cfg *config.AppConfig, l zerolog.Logger) (*Container, error) {
	cityList, err := cities.Load(cfg.CitiesFile)
	if err != nil {
		return nil, err
	}
	l.Info().Int("cities", len(cityList)).Str("source", citySource(cfg.CitiesFile)).Msg("city list loaded")

	httpLogger, err := logger.NewFileLogger(cfg.HTTPLogPath)
	if err != nil {
		return nil, fmt.Errorf("create http file logger: %w", err)
	}

	met := metrics.New()

	var wrap func(http.RoundTripper) http.RoundTripper
	if cfg.HTTPLogPath != "" {
		wrap = func(rt http.RoundTripper) http.RoundTripper {
			return providers.NewLoggingTransport(httpLogger, rt)
		}
	}
	client := providers.NewHTTPClient(cfg.Retry.ConnectTimeout, cfg.Retry.ReadTimeout, wrap)

	fetcher := providers.NewOpenMeteoProvider(providers.OpenMeteoOptions{
		BaseURL: cfg.BaseURL,
		HTTP: providers.HTTPClientConfig{
			Client:         client,
			AttemptTimeout: cfg.AttemptTimeout(),
			Backoff: providers.BackoffConfig{
				MaxAttempts:     cfg.Retry.Attempts,
				InitialInterval: cfg.Retry.InitialBackoff,
				MaxInterval:     cfg.Retry.MaxBackoff,
			},
		},
		Breaker: providers.BreakerConfig{
			Interval:            cfg.Breaker.Interval,
			Timeout:             cfg.Breaker.Timeout,
			ConsecutiveFailures: cfg.Breaker.Failures,
		},
		Observer: met,
		Logger:   l.With().Str("component", "openmeteo").Logger(),
	})

	collector := weather.NewCollector(fetcher, cfg.FetchWorkers, met, l.With().Str("component", "collector").Logger())
	exporter := report.NewExporter(cfg.DataDir, cfg.ExportFilenamePrefix)
	runs := store.NewMemoryStore(cfg.Store.MaxHistory, cfg.Store.MaxAge)

	gen := generator.NewService(cityList, collector, exporter, runs, met, l.With().Str("component", "generator").Logger())

	return &Container{
		Metrics:    met,
		Runs:       runs,
		Generator:  gen,
		httpLogger: httpLogger,
	}, nil
}

// Close flushes buffered logs.
func (c *Container) Close() error {
	if c.httpLogger == nil {
		return nil
	}
	return c.httpLogger.Sync()
}

func citySource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
