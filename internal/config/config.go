package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Retry configures the upstream retry policy.
type Retry struct {
	Attempts       int           `envconfig:"RETRY_ATTEMPTS" default:"3" validate:"gte=1"`
	InitialBackoff time.Duration `envconfig:"RETRY_INITIAL_BACKOFF" default:"500ms" validate:"gt=0"`
	MaxBackoff     time.Duration `envconfig:"RETRY_MAX_BACKOFF" default:"5s" validate:"gte=0"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"3s" validate:"gt=0"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"5s" validate:"gt=0"`
}

type Breaker struct {
	Interval time.Duration `envconfig:"BREAKER_INTERVAL" default:"1m"`
	Timeout  time.Duration `envconfig:"BREAKER_TIMEOUT" default:"2m"`
	Failures uint32        `envconfig:"BREAKER_FAILURES" default:"5" validate:"gte=1"`
}

// Store controls run history retention.
type Store struct {
	MaxHistory int           `envconfig:"STORE_MAX_HISTORY" default:"96"` // 0 = unlimited
	MaxAge     time.Duration `envconfig:"STORE_MAX_AGE" default:"24h"`    // 0 = unlimited
}

type AppConfig struct {
	BaseURL              string `envconfig:"BASE_URL" required:"true" validate:"required,url"`
	DataDir              string `envconfig:"DATA_DIR" required:"true" validate:"required"`
	ExportFilenamePrefix string `envconfig:"EXPORT_FILENAME_PREFIX" required:"true" validate:"required"`

	// CitiesFile overrides the built-in city list when set.
	CitiesFile string `envconfig:"CITIES_FILE"`

	FetchWorkers int `envconfig:"FETCH_WORKERS" default:"1" validate:"gte=1,lte=64"`

	// GenerateInterval schedules periodic generation runs; 0 disables them.
	GenerateInterval time.Duration `envconfig:"GENERATE_INTERVAL" default:"0"`

	Retry   Retry
	Breaker Breaker
	Store   Store

	Port        string `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogsPath    string `envconfig:"LOGS_PATH" default:"./log/city-weather-export.log"`
	HTTPLogPath string `envconfig:"HTTP_LOG_PATH"`
}

var validate = validator.New()

// Load reads .env (if present) and the environment. BASE_URL, DATA_DIR and
// EXPORT_FILENAME_PREFIX are required.
func Load(envFiles ...string) (*AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info().Strs("files", envFilesOrDefault(envFiles)).Msg("no .env file found, using environment variables")
		} else {
			log.Warn().Err(err).Msg("failed to load .env file")
		}
	}

	return FromEnv()
}

func envFilesOrDefault(files []string) []string {
	if len(files) == 0 {
		return []string{".env"}
	}
	return files
}

// FromEnv processes the current environment without touching .env files.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// AttemptTimeout bounds one upstream attempt: connecting plus reading.
func (c *AppConfig) AttemptTimeout() time.Duration {
	return c.Retry.ConnectTimeout + c.Retry.ReadTimeout
}
