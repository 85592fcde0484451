package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/i474232898/city-weather-export/internal/artifacts"
	"github.com/i474232898/city-weather-export/internal/common"
)

const (
	utf8BOM      = "\ufeff"
	artifactMode = 0o644
)

// Exporter writes report artifacts into one data directory.
type Exporter struct {
	dir    string
	prefix string
}

func NewExporter(dir, prefix string) *Exporter {
	return &Exporter{dir: dir, prefix: prefix}
}

// ExportCSV writes the table as semicolon-separated UTF-8 CSV with a BOM to
// {dir}/{prefix}{stamp}.csv, stamped with at, and returns the path.
func (e *Exporter) ExportCSV(t *Table, at time.Time) (string, error) {
	if t == nil {
		return "", errors.New("export csv: nil table")
	}
	name := e.prefix + common.Stamp(at) + ".csv"

	return e.writeAtomic(name, func(f *os.File) error {
		if _, err := f.WriteString(utf8BOM); err != nil {
			return err
		}
		w := csv.NewWriter(f)
		w.Comma = ';'
		if err := w.WriteAll(t.Strings()); err != nil {
			return err
		}
		return w.Error()
	})
}

// RenderChart draws the temperature chart to
// {dir}/temperature_by_city_{stamp}.png, stamped with at, and returns the path.
func (e *Exporter) RenderChart(t *Table, at time.Time) (string, error) {
	if t == nil {
		return "", errors.New("render chart: nil table")
	}
	name := artifacts.ChartPrefix + common.Stamp(at) + ".png"

	return e.writeAtomic(name, func(f *os.File) error {
		return drawTemperatureChart(t, f)
	})
}

// writeAtomic writes into a temp file in dir and renames it into place, so a
// failed write never leaves a partial artifact behind.
func (e *Exporter) writeAtomic(name string, write func(f *os.File) error) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(e.dir, ".tmp-"+name+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	// CreateTemp opens files 0600.
	if err := os.Chmod(tmpName, artifactMode); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}

	path := filepath.Join(e.dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}
