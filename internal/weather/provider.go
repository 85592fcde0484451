package weather

import (
	"context"
)

// Result is the outcome of fetching one city. Reading is always populated:
// on failure it carries the city name and unknown measurements, and Err
// explains why.
type Result struct {
	Reading Reading
	Err     error
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Succeeded wraps a successful reading.
func Succeeded(r Reading) Result {
	return Result{Reading: r}
}

// Failed returns the null-measurement result for city.
func Failed(city string, err error) Result {
	return Result{Reading: EmptyReading(city), Err: err}
}

// Fetcher abstracts a weather data source (e.g. Open-Meteo).
// Implementations never return a Result with an empty Reading.City.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, city City) Result
}
