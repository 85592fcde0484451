package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/i474232898/city-weather-export/internal/weather"
)

const namespace = "city_weather_export"

// Metrics holds Prometheus metric vectors for the export service.
type Metrics struct {
	Registry *prometheus.Registry

	CityFetchesTotal   *prometheus.CounterVec
	FetchAttemptsTotal *prometheus.CounterVec
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
}

// New constructs and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		CityFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "city_fetches_total",
				Help:      "City weather fetches by result",
			},
			[]string{"city", "result"},
		),
		FetchAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Upstream HTTP attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Generation runs by result",
			},
			[]string{"result"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Histogram of generation run latencies",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(
		m.CityFetchesTotal,
		m.FetchAttemptsTotal,
		m.GenerationsTotal,
		m.GenerationDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch implements weather.Observer.
func (m *Metrics) ObserveFetch(city weather.City, res weather.Result) {
	result := "ok"
	if !res.OK() {
		result = "failed"
	}
	m.CityFetchesTotal.WithLabelValues(city.Name, result).Inc()
}

// ObserveAttempt implements providers.AttemptObserver.
func (m *Metrics) ObserveAttempt(provider, outcome string) {
	m.FetchAttemptsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveGeneration records a finished generation run.
func (m *Metrics) ObserveGeneration(result string, d time.Duration) {
	m.GenerationsTotal.WithLabelValues(result).Inc()
	m.GenerationDuration.Observe(d.Seconds())
}
