// Package generator runs one full generation cycle: fetch every city,
// build the table, export the CSV and render the chart.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/i474232898/city-weather-export/internal/report"
	"github.com/i474232898/city-weather-export/internal/store"
	"github.com/i474232898/city-weather-export/internal/weather"
)

type collector interface {
	Collect(ctx context.Context, cities []weather.City) ([]weather.Reading, error)
}

type exporter interface {
	ExportCSV(t *report.Table, at time.Time) (string, error)
	RenderChart(t *report.Table, at time.Time) (string, error)
}

type runStore interface {
	SaveRun(run store.Run)
}

// Observer records generation outcomes.
type Observer interface {
	ObserveGeneration(result string, d time.Duration)
}

// Service orchestrates generation runs.
type Service struct {
	cities    []weather.City
	collector collector
	exporter  exporter
	runs      runStore
	observer  Observer
	logger    zerolog.Logger

	// mu serialises runs so concurrent triggers never race on one stamp.
	mu sync.Mutex
}

func NewService(
	cities []weather.City,
	c collector,
	e exporter,
	runs runStore,
	observer Observer,
	logger zerolog.Logger,
) *Service {
	return &Service{
		cities:    cities,
		collector: c,
		exporter:  e,
		runs:      runs,
		observer:  observer,
		logger:    logger,
	}
}

// Generate performs one generation run. An empty batch yields
// weather.ErrNoData and writes nothing.
func (s *Service) Generate(ctx context.Context) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := store.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := s.logger.With().Str("run_id", run.ID).Logger()
	log.Info().Int("cities", len(s.cities)).Msg("generation started")

	err := s.generate(ctx, &run)
	run.Duration = time.Since(run.StartedAt)

	result := "ok"
	switch {
	case errors.Is(err, weather.ErrNoData):
		result = "no_data"
		log.Warn().Msg("no data fetched")
	case err != nil:
		result = "error"
		run.Error = err.Error()
		log.Error().Err(err).Msg("generation failed")
	default:
		log.Info().
			Str("csv", run.CSVPath).
			Str("chart", run.ChartPath).
			Int("failed_cities", run.FailedCount).
			Dur("duration", run.Duration).
			Msg("generation completed")
	}

	if s.observer != nil {
		s.observer.ObserveGeneration(result, run.Duration)
	}
	if s.runs != nil && result != "no_data" {
		s.runs.SaveRun(run)
	}
	return run, err
}

func (s *Service) generate(ctx context.Context, run *store.Run) error {
	readings, err := s.collector.Collect(ctx, s.cities)
	if err != nil {
		return err
	}
	run.Cities = len(readings)
	for _, r := range readings {
		if r.TemperatureC == nil && r.WindSpeedMS == nil && r.HumidityPct == nil {
			run.FailedCount++
		}
	}

	table, err := report.ToTable(report.FromReadings(readings))
	if err != nil {
		return err
	}

	// One stamp per run so the CSV and chart names always pair up.
	stamp := run.StartedAt.Local()
	run.CSVPath, err = s.exporter.ExportCSV(table, stamp)
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	run.ChartPath, err = s.exporter.RenderChart(table, stamp)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
