// Package artifacts locates files written by generation runs.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/i474232898/city-weather-export/internal/common"
)

// ErrNotFound is returned when no artifact matches.
var ErrNotFound = errors.New("no matching files found")

// ChartPrefix is the filename prefix of rendered charts.
const ChartPrefix = "temperature_by_city_"

// Pattern builds the filename pattern {prefix}{stamp}.{ext}.
func Pattern(prefix, ext string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "(" + common.StampPattern + `)\.` + regexp.QuoteMeta(ext) + "$")
}

// Latest returns the path of the file in dir whose name matches
// {prefix}{stamp}.{ext} and carries the greatest embedded stamp.
// Modification times are ignored.
func Latest(dir, prefix, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read %s: %w", dir, err)
	}

	re := Pattern(prefix, ext)
	var (
		best   string
		bestTS time.Time
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ts, ok := common.ParseStamp(m[1])
		if !ok {
			continue
		}
		if best == "" || ts.After(bestTS) {
			best, bestTS = e.Name(), ts
		}
	}

	if best == "" {
		return "", ErrNotFound
	}
	return filepath.Join(dir, best), nil
}
