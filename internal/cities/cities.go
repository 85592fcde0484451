// Package cities loads the static list of cities a generation run covers.
package cities

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/city-weather-export/internal/weather"
)

//go:embed cities.yaml
var defaultCities []byte

var validate = validator.New()

type cityFile struct {
	Cities []weather.City `yaml:"cities" validate:"required,min=1,dive"`
}

// Default returns the built-in city list.
func Default() ([]weather.City, error) {
	return Parse(defaultCities)
}

// Load reads the city list from path, or the built-in list when path is empty.
func Load(path string) ([]weather.City, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading cities file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML city list.
func Parse(data []byte) ([]weather.City, error) {
	var f cityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing cities file: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid cities file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Cities))
	for _, c := range f.Cities {
		if _, dup := seen[c.Name]; dup {
			return nil, errors.New("duplicate city: " + c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return f.Cities, nil
}
