package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHourlySeriesAligned(t *testing.T) {
	s := HourlySeries{
		Times:    []time.Time{hour(9), hour(10), hour(11)},
		Humidity: []*int{Int(60), Int(62)},
	}

	got, truncated := s.Aligned()
	assert.True(t, truncated)
	assert.Len(t, got.Times, 2)
	assert.Len(t, got.Humidity, 2)

	same, truncated := got.Aligned()
	assert.False(t, truncated)
	assert.Equal(t, got, same)
}

func TestHourlySeriesHumidityAt(t *testing.T) {
	s := HourlySeries{
		Times:    []time.Time{hour(9), hour(10), hour(11)},
		Humidity: []*int{Int(60), nil, Int(65)},
	}

	assert.Equal(t, 60, *s.HumidityAt(hour(8)))
	assert.Nil(t, s.HumidityAt(hour(10)), "null value in the series stays null")
	assert.Equal(t, 65, *s.HumidityAt(hour(11).Add(10*time.Minute)))

	assert.Nil(t, HourlySeries{}.HumidityAt(hour(10)))
}

func TestResult(t *testing.T) {
	ok := Succeeded(Reading{City: "Oslo", TemperatureC: Float(1)})
	assert.True(t, ok.OK())

	failed := Failed("Oslo", assert.AnError)
	assert.False(t, failed.OK())
	assert.Equal(t, Reading{City: "Oslo"}, failed.Reading)
}
