package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/city-weather-export/internal/weather"
)

// Open-Meteo returns local times without an offset when timezone=auto.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements the weather.Fetcher interface for Open-Meteo.
// Each city gets its own circuit breaker.
type OpenMeteoProvider struct {
	name       string
	baseURL    string
	httpCfg    HTTPClientConfig
	breakerCfg BreakerConfig
	observer   AttemptObserver
	logger     zerolog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// OpenMeteoOptions configures NewOpenMeteoProvider.
type OpenMeteoOptions struct {
	BaseURL  string
	HTTP     HTTPClientConfig
	Breaker  BreakerConfig
	Observer AttemptObserver
	Logger   zerolog.Logger
}

func NewOpenMeteoProvider(opts OpenMeteoOptions) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:       "openmeteo",
		baseURL:    opts.BaseURL,
		httpCfg:    opts.HTTP,
		breakerCfg: opts.Breaker,
		observer:   opts.Observer,
		logger:     opts.Logger,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) breakerFor(city weather.City) *gobreaker.CircuitBreaker {
	key := city.Key()

	p.mu.Lock()
	defer p.mu.Unlock()
	cb, ok := p.breakers[key]
	if !ok {
		cb = NewCircuitBreaker(p.name+":"+key, p.breakerCfg)
		p.breakers[key] = cb
	}
	return cb
}

type openMeteoPayload struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		Time        string   `json:"time"`
	} `json:"current_weather"`
	Hourly struct {
		Time             []string `json:"time"`
		RelativeHumidity []*int   `json:"relative_humidity_2m"`
	} `json:"hourly"`
}

// Fetch retrieves the current weather for city. It never returns an error:
// failures produce a Result whose Reading has unknown measurements.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, city weather.City) weather.Result {
	start := time.Now()

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(city.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(city.Longitude, 'f', -1, 64))
		values.Set("current_weather", "true")
		values.Set("hourly", "relative_humidity_2m")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	var payload openMeteoPayload
	err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.breakerFor(city), p.observer, buildRequest,
		func(resp *http.Response) error {
			payload = openMeteoPayload{}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("decode openmeteo response: %w", err)
			}
			return nil
		})
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("city", city.Name).
			Dur("duration", time.Since(start)).
			Msg("error fetching weather data")
		return weather.Failed(city.Name, err)
	}

	reading, err := p.normalize(city, payload)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("city", city.Name).
			Msg("failed to parse openmeteo response")
		return weather.Failed(city.Name, err)
	}

	p.logger.Info().
		Str("city", city.Name).
		Dur("duration", time.Since(start)).
		Msg("successfully fetched weather data")
	return weather.Succeeded(reading)
}

func (p *OpenMeteoProvider) normalize(city weather.City, payload openMeteoPayload) (weather.Reading, error) {
	reading := weather.EmptyReading(city.Name)
	cw := payload.CurrentWeather
	if cw == nil {
		// Without a current reading there is nothing to align humidity to.
		return reading, nil
	}
	reading.TemperatureC = cw.Temperature
	reading.WindSpeedMS = cw.WindSpeed

	if len(payload.Hourly.RelativeHumidity) == 0 || len(payload.Hourly.Time) == 0 {
		return reading, nil
	}

	current, err := parseOpenMeteoTime(cw.Time)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("current_weather.time: %w", err)
	}

	series := weather.HourlySeries{
		Times:    make([]time.Time, 0, len(payload.Hourly.Time)),
		Humidity: payload.Hourly.RelativeHumidity,
	}
	for i, raw := range payload.Hourly.Time {
		ts, err := parseOpenMeteoTime(raw)
		if err != nil {
			return weather.Reading{}, fmt.Errorf("hourly.time[%d]: %w", i, err)
		}
		series.Times = append(series.Times, ts)
	}

	series, truncated := series.Aligned()
	if truncated {
		p.logger.Warn().
			Str("city", city.Name).
			Int("times", len(payload.Hourly.Time)).
			Int("humidity", len(payload.Hourly.RelativeHumidity)).
			Msg("hourly series length mismatch; truncated to shorter")
	}

	reading.HumidityPct = series.HumidityAt(current)
	return reading, nil
}

// parseOpenMeteoTime parses both the offset-less local layout and RFC3339.
// Offset-less values are read as UTC so that all instants of one response
// share a common representation.
func parseOpenMeteoTime(s string) (time.Time, error) {
	if ts, err := time.Parse(openMeteoTimeLayout, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
