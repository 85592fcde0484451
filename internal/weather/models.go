package weather

import (
	"fmt"
	"time"
)

// City is a named place from the static city list.
type City struct {
	Name      string  `json:"name" yaml:"name" validate:"required"`
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
}

// Key identifies a city by name and coordinates.
func (c City) Key() string {
	return fmt.Sprintf("%s(%.4f,%.4f)", c.Name, c.Latitude, c.Longitude)
}

// Reading is the normalized observation for one city in one generation run.
// Nil measurement fields mean the value is unknown.
type Reading struct {
	City         string   `json:"city"`
	TemperatureC *float64 `json:"temperatureC"`
	WindSpeedMS  *float64 `json:"windSpeedMs"`
	HumidityPct  *int     `json:"humidityPercent"`
}

// EmptyReading returns a reading for city with every measurement unknown.
func EmptyReading(city string) Reading {
	return Reading{City: city}
}

// HourlySeries holds index-aligned hourly timestamps and humidity values.
type HourlySeries struct {
	Times    []time.Time
	Humidity []*int
}

// Aligned returns the series truncated to the shorter of its two slices.
// The second return value reports whether truncation happened.
func (s HourlySeries) Aligned() (HourlySeries, bool) {
	n := len(s.Times)
	if len(s.Humidity) < n {
		n = len(s.Humidity)
	}
	truncated := n != len(s.Times) || n != len(s.Humidity)
	return HourlySeries{Times: s.Times[:n], Humidity: s.Humidity[:n]}, truncated
}

// HumidityAt returns the humidity closest in time to target.
// It returns nil when the series is empty or the matched value is null.
func (s HourlySeries) HumidityAt(target time.Time) *int {
	idx, err := ClosestIndex(target, s.Times)
	if err != nil || idx >= len(s.Humidity) {
		return nil
	}
	return s.Humidity[idx]
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
