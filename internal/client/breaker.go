package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/dm/sfm-go/internal/logging"
	"github.com/dm/sfm-go/internal/metrics"
)

var _ SeafileClient = (*BreakerClient)(nil)

// BreakerConfig configures BreakerClient.
type BreakerConfig struct {
	// Name labels log lines and metrics.
	Name string
	// MaxFailures is the number of consecutive connection errors that opens
	// the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a trial request.
	Timeout time.Duration
}

// BreakerClient wraps a SeafileClient with a circuit breaker. Only connection
// errors count as failures; a rejected call is reported as a ConnectionError.
// Login, Diagnostics and BaseURL pass straight through.
type BreakerClient struct {
	client SeafileClient
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewBreakerClient wraps c.
func NewBreakerClient(c SeafileClient, cfg BreakerConfig) *BreakerClient {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	name := "seafile-" + cfg.Name

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsConnectionError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &BreakerClient{client: c, cb: cb, name: name}
}

// State returns the breaker state as closed, half-open or open.
func (b *BreakerClient) State() string {
	return stateToString(b.cb.State())
}

func (b *BreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, &ConnectionError{Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func (b *BreakerClient) Login(ctx context.Context) error {
	return b.client.Login(ctx)
}

func (b *BreakerClient) Account(ctx context.Context) (*AccountInfo, error) {
	return castResult[*AccountInfo](b.execute(func() (any, error) { return b.client.Account(ctx) }))
}

func (b *BreakerClient) Server(ctx context.Context) (*ServerInfo, error) {
	return castResult[*ServerInfo](b.execute(func() (any, error) { return b.client.Server(ctx) }))
}

func (b *BreakerClient) Libraries(ctx context.Context) ([]Library, error) {
	return castResult[[]Library](b.execute(func() (any, error) { return b.client.Libraries(ctx) }))
}

func (b *BreakerClient) Directories(ctx context.Context, repoID, path string) ([]DirEntry, error) {
	return castResult[[]DirEntry](b.execute(func() (any, error) { return b.client.Directories(ctx, repoID, path) }))
}

func (b *BreakerClient) File(ctx context.Context, repoID, path string) (string, error) {
	return castResult[string](b.execute(func() (any, error) { return b.client.File(ctx, repoID, path) }))
}

func (b *BreakerClient) FileBytes(ctx context.Context, repoID, path string) ([]byte, error) {
	return castResult[[]byte](b.execute(func() (any, error) { return b.client.FileBytes(ctx, repoID, path) }))
}

func (b *BreakerClient) Thumbnail(ctx context.Context, repoID, path string, size int) ([]byte, error) {
	return castResult[[]byte](b.execute(func() (any, error) { return b.client.Thumbnail(ctx, repoID, path, size) }))
}

func (b *BreakerClient) Diagnostics() map[string]DiagnosticRecord {
	return b.client.Diagnostics()
}

func (b *BreakerClient) BaseURL() string {
	return b.client.BaseURL()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
