package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// CircuitBreakerConfig tunes the breaker in front of the backend. The breaker
// opens once at least MinRequests were seen in an Interval and FailureRatio
// of them failed; it probes again with MaxRequests after Timeout.
type CircuitBreakerConfig struct {
	Name         string
	MaxRequests  uint32
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	Timeout      time.Duration
}

// DefaultCircuitBreakerConfig returns the production breaker settings.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		MinRequests:  5,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		Timeout:      15 * time.Second,
	}
}

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "blip_dashboard_circuit_breaker_state",
		Help: "Backend circuit breaker state (0=closed, 1=half-open, 2=open).",
	},
	[]string{"name"},
)

// ServerError is a 5xx reply. The breaker counts it as a failure.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Body)
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}

// CircuitBreakerClient fails fast while the backend keeps returning 5xx or
// transport errors, so the UI shows the network message without waiting on
// retries.
type CircuitBreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewCircuitBreakerClient puts a breaker in front of client. A nil log
// discards state-change logs.
func NewCircuitBreakerClient(client *Client, cfg CircuitBreakerConfig, log *zap.Logger) *CircuitBreakerClient {
	if log == nil {
		log = zap.NewNop()
	}
	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &CircuitBreakerClient{
		client: client,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= cfg.MinRequests &&
					float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
			},
			// 4xx replies and caller cancellations say nothing about backend health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("backend breaker changed state",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
				breakerState.WithLabelValues(name).Set(stateToFloat(to))
			},
		}),
	}
}

// Do sends req through the breaker. A 5xx reply comes back as *ServerError
// with its body drained and closed; an open breaker returns
// gobreaker.ErrOpenState.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 500 {
			return resp, nil
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = resp.Body.Close()
		return nil, &ServerError{Status: resp.StatusCode, Body: string(body)}
	})
}

// State reports the breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
