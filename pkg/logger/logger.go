package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize  = 10
	maxBack  = 5
	maxAge   = 30
	fileMode = 0o644
)

// NewLogger returns a zerolog logger writing to stdout and, when filePath is
// set, to a rotating log file.
func NewLogger(filePath, serviceName, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	writers := []io.Writer{consoleWriter}
	if filePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filePath, // log file location
			MaxSize:    maxSize,  // megabytes before rotation
			MaxBackups: maxBack,  // number of old files to retain
			MaxAge:     maxAge,   // days to retain rotated files
			Compress:   true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger().
		Level(lvl)

	logger.Debug().
		Str("logsFilePath", filePath).
		Str("serviceName", serviceName).
		Msg("logger initialized")

	return logger, nil
}

// NewFileLogger returns a JSON zap logger appending to filePath.
// An empty path yields a no-op logger.
func NewFileLogger(filePath string) (*zap.Logger, error) {
	if filePath == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filepath.Clean(filePath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(file),
		zap.InfoLevel,
	)
	return zap.New(core), nil
}
