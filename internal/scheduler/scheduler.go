package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/city-weather-export/internal/store"
	"github.com/i474232898/city-weather-export/internal/weather"
)

// Generator is the job the scheduler runs.
type Generator interface {
	Generate(ctx context.Context) (store.Run, error)
}

// Scheduler periodically triggers generation runs.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	generator  Generator
	interval   time.Duration
	runTimeout time.Duration
	logger     zerolog.Logger
}

// New creates a new Scheduler. An interval <= 0 disables scheduling.
func New(interval, runTimeout time.Duration, generator Generator, logger zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		generator:  generator,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info().Msg("scheduler: no interval configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler: started")
	return nil
}

func (s *Scheduler) runOnce() {
	s.logger.Info().Msg("scheduler: running generation job")

	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	run, err := s.generator.Generate(ctx)
	switch {
	case errors.Is(err, weather.ErrNoData):
		s.logger.Warn().Msg("scheduler: generation produced no data")
	case err != nil:
		s.logger.Error().Err(err).Msg("scheduler: generation failed")
	default:
		s.logger.Info().Str("run_id", run.ID).Msg("scheduler: completed generation job")
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
