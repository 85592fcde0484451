package httpapi

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/city-weather-export/internal/artifacts"
	"github.com/i474232898/city-weather-export/internal/store"
	"github.com/i474232898/city-weather-export/internal/weather"
)

// Generator runs one generation cycle.
type Generator interface {
	Generate(ctx context.Context) (store.Run, error)
}

// RunLister exposes recorded generation runs.
type RunLister interface {
	Latest() (store.Run, error)
	List() []store.Run
}

// Deps are the collaborators the routes need.
type Deps struct {
	Generator Generator
	Runs      RunLister
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer

	DataDir   string
	CSVPrefix string

	// GenerateTimeout bounds one POST /generate; 0 means no extra bound.
	GenerateTimeout time.Duration
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Weather API is running."})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "city-weather-export",
		})
	})

	app.Post("/generate", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if d.GenerateTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.GenerateTimeout)
			defer cancel()
		}

		run, err := d.Generator.Generate(ctx)
		if err != nil {
			if errors.Is(err, weather.ErrNoData) {
				return c.JSON(fiber.Map{"message": "No data fetched."})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Error during generation: "+err.Error())
		}

		return c.JSON(fiber.Map{
			"message": "Weather data and plot generated.",
			"run":     run,
		})
	})

	app.Get("/download-csv", func(c *fiber.Ctx) error {
		return sendLatest(c, d.DataDir, d.CSVPrefix, "csv", "text/csv", "No CSV file found.")
	})

	app.Get("/plot", func(c *fiber.Ctx) error {
		return sendLatest(c, d.DataDir, artifacts.ChartPrefix, "png", "image/png", "No plot image found.")
	})

	if d.Runs != nil {
		app.Get("/runs", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"runs": d.Runs.List()})
		})

		app.Get("/runs/latest", func(c *fiber.Ctx) error {
			run, err := d.Runs.Latest()
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "no generation runs recorded")
				}
				return err
			}
			return c.JSON(run)
		})
	}

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}

func sendLatest(c *fiber.Ctx, dir, prefix, ext, contentType, notFound string) error {
	path, err := artifacts.Latest(dir, prefix, ext)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, notFound)
		}
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	c.Attachment(filepath.Base(abs))
	if err := c.SendFile(abs); err != nil {
		return err
	}
	// SendFile picks a type from the extension; pin the documented one.
	c.Set(fiber.HeaderContentType, contentType+charsetFor(contentType))
	return nil
}

func charsetFor(contentType string) string {
	if strings.HasPrefix(contentType, "text/") {
		return "; charset=utf-8"
	}
	return ""
}
