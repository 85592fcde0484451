package providers

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxLoggedBody caps how much of each response body ends up in the log.
const maxLoggedBody = 2048

// LoggingTransport records every outbound request to the upstream API.
type LoggingTransport struct {
	Logger *zap.Logger
	Proxy  http.RoundTripper
}

// NewLoggingTransport wraps proxy (http.DefaultTransport when nil).
func NewLoggingTransport(logger *zap.Logger, proxy http.RoundTripper) *LoggingTransport {
	if proxy == nil {
		proxy = http.DefaultTransport
	}
	return &LoggingTransport{Logger: logger, Proxy: proxy}
}

func (l *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.Proxy.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		l.Logger.Error("HTTP request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		l.Logger.Error("Failed to read response body",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	snippet := bodyBytes
	if len(snippet) > maxLoggedBody {
		snippet = snippet[:maxLoggedBody]
	}
	l.Logger.Info("HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.ByteString("body_snipped", snippet),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}
