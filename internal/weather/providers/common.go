package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// BreakerConfig controls the circuit breaker wrapped around each attempt.
type BreakerConfig struct {
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client *http.Client
	// AttemptTimeout bounds a single attempt, including reading the body.
	AttemptTimeout time.Duration
	Backoff        BackoffConfig
}

// AttemptObserver is told about every attempt outcome ("ok", "retry", "fail").
type AttemptObserver interface {
	ObserveAttempt(provider, outcome string)
}

var (
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// retryableStatus lists the upstream statuses worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// NewHTTPClient builds a client whose transport enforces the connect timeout
// and the time-to-first-byte read timeout.
func NewHTTPClient(connectTimeout, readTimeout time.Duration, wrap func(http.RoundTripper) http.RoundTripper) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	var rt http.RoundTripper = transport
	if wrap != nil {
		rt = wrap(rt)
	}
	return &http.Client{Transport: rt}
}

// NewCircuitBreaker returns a breaker that trips after cfg.ConsecutiveFailures
// consecutive failed attempts. Only retryable failures count; a 4xx or an
// undecodable body says nothing about upstream health.
func NewCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isRetryable(err)
		},
	})
}

// retryable marks an attempt error that may succeed on a later attempt.
type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

func isRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r)
}

// doRequestWithResilience executes a GET request with retries, exponential
// backoff and a circuit breaker, and returns the decoded body via handle.
// Only idempotent requests are retried. Status 500/502/503/504 and transport
// errors are retried; everything else fails on the first attempt.
func doRequestWithResilience(
	ctx context.Context,
	provider string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	observer AttemptObserver,
	buildRequest func(ctx context.Context) (*http.Request, error),
	handle func(resp *http.Response) error,
) error {
	if cfg.Client == nil {
		return errNoHTTPClient
	}
	if cfg.Backoff.MaxAttempts < 1 || cfg.Backoff.InitialInterval <= 0 {
		return errInvalidConfig
	}

	observe := func(outcome string) {
		if observer != nil {
			observer.ObserveAttempt(provider, outcome)
		}
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, err := cb.Execute(func() (interface{}, error) {
			return nil, attemptOnce(ctx, cfg, buildRequest, handle)
		})
		if err == nil {
			observe("ok")
			return nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			observe("fail")
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if !isRetryable(err) || attempt+1 >= cfg.Backoff.MaxAttempts {
			observe("fail")
			return err
		}
		observe("retry")

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func attemptOnce(
	ctx context.Context,
	cfg HTTPClientConfig,
	buildRequest func(ctx context.Context) (*http.Request, error),
	handle func(resp *http.Response) error,
) error {
	if cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
		defer cancel()
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return err
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return fmt.Errorf("refusing to send %s through retrying client", req.Method)
	}

	resp, err := cfg.Client.Do(req)
	if err != nil {
		// Connection-level failure; a caller cancellation is final.
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return err
		}
		return retryable{err}
	}
	defer resp.Body.Close()

	if retryableStatus[resp.StatusCode] {
		return retryable{fmt.Errorf("%w: %d", errServerError, resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}

	if err := handle(resp); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return retryable{err}
		}
		return err
	}
	return nil
}
