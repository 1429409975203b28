package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/lacajita/backend/internal/logging"
	"github.com/lacajita/backend/internal/metrics"
)

const maxResponseBytes = 8 << 20

// BreakerSettings tunes the circuit breaker wrapped around each upstream.
type BreakerSettings struct {
	// MinRequests is the number of calls in a window before the failure
	// ratio is considered.
	MinRequests uint32
	// FailureRatio opens the breaker once reached.
	FailureRatio float64
	// Interval resets the closed-state counters.
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests caps the probes allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerSettings opens after 60% failures over at least 10 calls and
// probes again after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:      10,
		FailureRatio:     0.6,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 3,
	}
}

// upstream performs HTTP calls to one third-party API behind a breaker.
type upstream struct {
	name   string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
}

func newUpstream(name string, client *http.Client, timeout time.Duration, settings BreakerSettings) *upstream {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if settings.MinRequests == 0 {
		settings = DefaultBreakerSettings()
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.HalfOpenRequests,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Default().LogAttrs(context.Background(), slog.LevelWarn, "circuit breaker state change",
				slog.String("upstream", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// A rejected request says nothing about the upstream's health.
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.ClientError()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &upstream{name: name, client: client, cb: cb}
}

// do sends req and returns the response body of a 2xx answer. Non-2xx answers
// yield a *StatusError carrying the body.
func (u *upstream) do(ctx context.Context, req *http.Request) (body []byte, err error) {
	ctx, span := logging.StartSpan(ctx, "external."+u.name)
	defer func() {
		span.Fail(err)
		span.End()
	}()

	body, err = u.cb.Execute(func() ([]byte, error) {
		return u.roundTrip(req.WithContext(ctx))
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ExternalRequests.WithLabelValues(u.name, "rejected").Inc()
		return nil, fmt.Errorf("%s: %w", u.name, ErrCircuitOpen)
	case err != nil:
		metrics.ExternalRequests.WithLabelValues(u.name, "failure").Inc()
		return nil, err
	}
	metrics.ExternalRequests.WithLabelValues(u.name, "success").Inc()
	return body, nil
}

func (u *upstream) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w: %v", u.name, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w: %v", u.name, ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Upstream: u.name, Status: resp.StatusCode, Body: bytes.TrimSpace(body)}
	}
	return body, nil
}

// State reports the breaker state for health output.
func (u *upstream) State() string {
	return u.cb.State().String()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
