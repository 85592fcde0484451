package weather

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNoData is returned when a batch produced no readings at all.
var ErrNoData = errors.New("no weather data fetched")

// Observer is notified of each city outcome. Used for metrics.
type Observer interface {
	ObserveFetch(city City, res Result)
}

// Collector fetches readings for a list of cities.
type Collector struct {
	fetcher  Fetcher
	workers  int
	observer Observer
	logger   zerolog.Logger
}

// NewCollector creates a new Collector. workers <= 1 fetches sequentially.
func NewCollector(fetcher Fetcher, workers int, observer Observer, logger zerolog.Logger) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		fetcher:  fetcher,
		workers:  workers,
		observer: observer,
		logger:   logger,
	}
}

// Collect fetches every city and returns one reading per city in input order,
// including readings for cities whose fetch failed.
func (c *Collector) Collect(ctx context.Context, cities []City) ([]Reading, error) {
	c.logger.Debug().
		Int("cities", len(cities)).
		Int("workers", c.workers).
		Str("provider", c.fetcher.Name()).
		Msg("collecting readings")

	results := make([]Result, len(cities))

	if c.workers == 1 {
		for i, city := range cities {
			results[i] = c.fetchOne(ctx, city)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, c.workers)
		for i, city := range cities {
			i, city := i, city
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				results[i] = c.fetchOne(ctx, city)
			}()
		}
		wg.Wait()
	}

	readings := make([]Reading, 0, len(results))
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
		readings = append(readings, res.Reading)
	}

	if len(readings) == 0 {
		c.logger.Warn().Msg("no readings collected")
		return nil, ErrNoData
	}

	c.logger.Info().
		Int("cities", len(readings)).
		Int("failed", failed).
		Msg("readings collected")
	return readings, nil
}

func (c *Collector) fetchOne(ctx context.Context, city City) Result {
	res := c.fetcher.Fetch(ctx, city)
	if res.Reading.City == "" {
		res.Reading.City = city.Name
	}
	if c.observer != nil {
		c.observer.ObserveFetch(city, res)
	}
	return res
}
