package weather_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/city-weather-export/internal/weather"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Name() string { return "mock" }

func (m *mockFetcher) Fetch(ctx context.Context, city weather.City) weather.Result {
	args := m.Called(ctx, city)
	return args.Get(0).(weather.Result)
}

type recordingObserver struct {
	mu  sync.Mutex
	oks map[string]bool
}

func (o *recordingObserver) ObserveFetch(city weather.City, res weather.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.oks == nil {
		o.oks = map[string]bool{}
	}
	o.oks[city.Name] = res.OK()
}

var testCities = []weather.City{
	{Name: "Alpha", Latitude: 1, Longitude: 1},
	{Name: "Beta", Latitude: 2, Longitude: 2},
	{Name: "Gamma", Latitude: 3, Longitude: 3},
}

func TestCollector_KeepsFailedCities(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, testCities[0]).
		Return(weather.Succeeded(weather.Reading{City: "Alpha", TemperatureC: weather.Float(10), WindSpeedMS: weather.Float(1)})).Once()
	f.On("Fetch", mock.Anything, testCities[1]).
		Return(weather.Failed("Beta", errors.New("connection refused"))).Once()
	f.On("Fetch", mock.Anything, testCities[2]).
		Return(weather.Succeeded(weather.Reading{City: "Gamma", TemperatureC: weather.Float(5)})).Once()

	obs := &recordingObserver{}
	c := weather.NewCollector(f, 1, obs, zerolog.Nop())

	readings, err := c.Collect(context.Background(), testCities)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	assert.Equal(t, "Beta", readings[1].City)
	assert.Nil(t, readings[1].TemperatureC)
	assert.Nil(t, readings[1].WindSpeedMS)
	assert.Nil(t, readings[1].HumidityPct)
	assert.Equal(t, 10.0, *readings[0].TemperatureC)

	assert.Equal(t, map[string]bool{"Alpha": true, "Beta": false, "Gamma": true}, obs.oks)
	f.AssertExpectations(t)
}

func TestCollector_ConcurrentPreservesOrder(t *testing.T) {
	f := &mockFetcher{}
	// Earlier cities finish last.
	for i, city := range testCities {
		delay := time.Duration(len(testCities)-i) * 20 * time.Millisecond
		f.On("Fetch", mock.Anything, city).
			After(delay).
			Return(weather.Succeeded(weather.Reading{City: city.Name})).Once()
	}

	c := weather.NewCollector(f, 3, nil, zerolog.Nop())

	readings, err := c.Collect(context.Background(), testCities)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	for i, city := range testCities {
		assert.Equal(t, city.Name, readings[i].City)
	}
	f.AssertExpectations(t)
}

func TestCollector_FillsMissingCityName(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, testCities[0]).Return(weather.Result{Err: errors.New("boom")}).Once()

	c := weather.NewCollector(f, 1, nil, zerolog.Nop())
	readings, err := c.Collect(context.Background(), testCities[:1])
	require.NoError(t, err)
	assert.Equal(t, "Alpha", readings[0].City)
}

func TestCollector_NoCities(t *testing.T) {
	c := weather.NewCollector(&mockFetcher{}, 2, nil, zerolog.Nop())

	readings, err := c.Collect(context.Background(), nil)
	assert.ErrorIs(t, err, weather.ErrNoData)
	assert.Empty(t, readings)
}
