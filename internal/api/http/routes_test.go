package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/city-weather-export/internal/store"
	"github.com/i474232898/city-weather-export/internal/weather"
)

type stubGenerator struct {
	run   store.Run
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context) (store.Run, error) {
	s.calls++
	return s.run, s.err
}

func newTestApp(t *testing.T, gen Generator, dataDir string) (*fiber.App, *store.MemoryStore) {
	t.Helper()
	runs := store.NewMemoryStore(10, time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Deps{
		Generator: gen,
		Runs:      runs,
		Gatherer:  prometheus.NewRegistry(),
		DataDir:   dataDir,
		CSVPrefix: "weather_data_",
	})
	return app, runs
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestRoot(t *testing.T) {
	app, _ := newTestApp(t, &stubGenerator{}, t.TempDir())

	resp, body := doRequest(t, app, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Weather API is running."}`, string(body))
}

func TestGenerate(t *testing.T) {
	gen := &stubGenerator{run: store.Run{ID: "run-1", CSVPath: "data/x.csv"}}
	app, _ := newTestApp(t, gen, t.TempDir())

	resp, body := doRequest(t, app, http.MethodPost, "/generate")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, gen.calls)

	var payload struct {
		Message string    `json:"message"`
		Run     store.Run `json:"run"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "Weather data and plot generated.", payload.Message)
	assert.Equal(t, "run-1", payload.Run.ID)

	// GET is not a trigger.
	resp, _ = doRequest(t, app, http.MethodGet, "/generate")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGenerate_Failure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("missing required column: Wind Speed (m/s)")}
	app, _ := newTestApp(t, gen, t.TempDir())

	resp, body := doRequest(t, app, http.MethodPost, "/generate")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "Error during generation: missing required column")
}

func TestGenerate_NoData(t *testing.T) {
	app, _ := newTestApp(t, &stubGenerator{err: weather.ErrNoData}, t.TempDir())

	resp, body := doRequest(t, app, http.MethodPost, "/generate")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"No data fetched."}`, string(body))
}

func TestDownloadCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weather_data_20250627_090000.csv"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weather_data_20250627_100000.csv"), []byte("new"), 0o644))
	app, _ := newTestApp(t, &stubGenerator{}, dir)

	resp, body := doRequest(t, app, http.MethodGet, "/download-csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "new", string(body))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "weather_data_20250627_100000.csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
}

func TestDownloadCSV_NotFound(t *testing.T) {
	app, _ := newTestApp(t, &stubGenerator{}, filepath.Join(t.TempDir(), "missing"))

	resp, body := doRequest(t, app, http.MethodGet, "/download-csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "No CSV file found.")
}

func TestPlot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temperature_by_city_20250627_100000.png"), []byte("png"), 0o644))
	app, _ := newTestApp(t, &stubGenerator{}, dir)

	resp, body := doRequest(t, app, http.MethodGet, "/plot")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png", string(body))
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
}

func TestPlot_NotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weather_data_20250627_100000.csv"), []byte("x"), 0o644))
	app, _ := newTestApp(t, &stubGenerator{}, dir)

	resp, _ := doRequest(t, app, http.MethodGet, "/plot")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRuns(t *testing.T) {
	app, runs := newTestApp(t, &stubGenerator{}, t.TempDir())

	resp, _ := doRequest(t, app, http.MethodGet, "/runs/latest")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	runs.SaveRun(store.Run{ID: "a", StartedAt: time.Now()})
	runs.SaveRun(store.Run{ID: "b", StartedAt: time.Now()})

	resp, body := doRequest(t, app, http.MethodGet, "/runs/latest")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var latest store.Run
	require.NoError(t, json.Unmarshal(body, &latest))
	assert.Equal(t, "b", latest.ID)

	resp, body = doRequest(t, app, http.MethodGet, "/runs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Runs, 2)
	assert.Equal(t, "b", list.Runs[0].ID)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, &stubGenerator{}, t.TempDir())

	resp, _ := doRequest(t, app, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
