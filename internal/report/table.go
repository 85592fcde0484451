// Package report turns a batch of readings into the exported CSV table and
// the temperature chart.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/i474232898/city-weather-export/internal/weather"
)

// Column names, in export order.
const (
	ColCity         = "City"
	ColTemperatureC = "Temperature (C)"
	ColWindMS       = "Wind Speed (m/s)"
	ColHumidity     = "Humidity (%)"
	ColTemperatureF = "Temperature (F)"
	ColWindMph      = "Wind Speed (mph)"
)

// Columns is the header of the exported table.
var Columns = []string{ColCity, ColTemperatureC, ColWindMS, ColHumidity, ColTemperatureF, ColWindMph}

var requiredColumns = []string{ColTemperatureC, ColWindMS}

// MphPerMS converts metres per second to miles per hour.
const MphPerMS = 2.23694

// ErrSchema is the sentinel matched by every *SchemaError.
var ErrSchema = errors.New("schema error")

// SchemaError reports a required column missing from the whole batch.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Record is one input row keyed by column name. Values may be any numeric
// type, numeric pointer, string or nil.
type Record map[string]any

// FromReadings converts fetched readings into records.
func FromReadings(readings []weather.Reading) []Record {
	out := make([]Record, 0, len(readings))
	for _, r := range readings {
		out = append(out, Record{
			ColCity:         r.City,
			ColTemperatureC: r.TemperatureC,
			ColWindMS:       r.WindSpeedMS,
			ColHumidity:     r.HumidityPct,
		})
	}
	return out
}

// Row is one fully derived table row. Missing values are NaN.
type Row struct {
	City         string
	TemperatureC float64
	WindSpeedMS  float64
	HumidityPct  float64
	TemperatureF float64
	WindSpeedMph float64
}

// Table is the sorted, derived batch ready for export.
type Table struct {
	Rows []Row
}

// ToTable validates the records, coerces measurements to numbers, derives
// Fahrenheit and mph, and sorts rows by Celsius ascending with missing
// temperatures last.
func ToTable(records []Record) (*Table, error) {
	for _, col := range requiredColumns {
		if !hasColumn(records, col) {
			return nil, &SchemaError{Column: col}
		}
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		c := toFloat(rec[ColTemperatureC])
		ms := toFloat(rec[ColWindMS])
		rows = append(rows, Row{
			City:         toString(rec[ColCity]),
			TemperatureC: c,
			WindSpeedMS:  ms,
			HumidityPct:  toFloat(rec[ColHumidity]),
			TemperatureF: c*9/5 + 32,
			WindSpeedMph: ms * MphPerMS,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].TemperatureC, rows[j].TemperatureC
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		default:
			return a < b
		}
	})

	return &Table{Rows: rows}, nil
}

// Strings renders the table as header plus display-rounded text rows.
func (t *Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), Columns...))
	for _, r := range t.Rows {
		out = append(out, []string{
			r.City,
			formatDecimal(r.TemperatureC),
			formatDecimal(r.WindSpeedMS),
			formatInt(r.HumidityPct),
			formatDecimal(r.TemperatureF),
			formatDecimal(r.WindSpeedMph),
		})
	}
	return out
}

func hasColumn(records []Record, col string) bool {
	for _, rec := range records {
		if _, ok := rec[col]; ok {
			return true
		}
	}
	return false
}

func formatDecimal(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatInt(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

// toFloat coerces v to a number; anything non-numeric becomes NaN.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case *float64:
		if x == nil {
			return math.NaN()
		}
		return *x
	case *int:
		if x == nil {
			return math.NaN()
		}
		return float64(*x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
