package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// DefaultCallTimeout bounds each catalog or event-log call.
const DefaultCallTimeout = 3 * time.Second

// ErrCallTimeout is returned when a guarded call outlives its timeout.
var ErrCallTimeout = errors.New("data call timed out")

// Guard wraps data access calls with a per-call timeout and a circuit
// breaker. A tripped breaker fails calls immediately until it half-opens.
type Guard struct {
	cb      *gobreaker.CircuitBreaker[any]
	timeout time.Duration
	name    string
}

// NewGuard creates a guard. Circuit breaker configuration:
// - 1 probe request in half-open state
// - 1 minute measurement window
// - 30 second wait before probing
// - opens after 5 consecutive failures
// - caller cancellations never count as failures
func NewGuard(name string, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A caller that hangs up says nothing about the data store.
		IsSuccessful: func(err error) bool {
			return err == nil || callerGone(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &Guard{cb: cb, timeout: timeout, name: name}
}

// State returns the breaker state name.
func (g *Guard) State() string {
	return g.cb.State().String()
}

type callResult struct {
	value any
	err   error
}

// guardedCall runs fn under g. The call is abandoned when the timeout or ctx
// expires; fn receives a context that is cancelled at that point.
func guardedCall[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	start := time.Now()

	res, err := g.cb.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		done := make(chan callResult, 1)
		go func() {
			v, err := fn(callCtx)
			done <- callResult{value: v, err: err}
		}()

		select {
		case r := <-done:
			if r.err != nil {
				return nil, g.classify(ctx, callCtx, r.err)
			}
			return r.value, nil
		case <-callCtx.Done():
			return nil, g.classify(ctx, callCtx, callCtx.Err())
		}
	})
	metrics.RecordDataCall(op, time.Since(start), err)

	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	v, ok := res.(T)
	if !ok {
		return zero, nil
	}
	return v, nil
}

// classify maps an error seen under callCtx to ErrCallTimeout when the
// guard's own deadline fired, or to a callerError when the parent ctx ended.
func (g *Guard) classify(parent, callCtx context.Context, err error) error {
	if parent.Err() != nil {
		return &callerError{err: parent.Err()}
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return ErrCallTimeout
	}
	return err
}

// callerError marks a call abandoned because the caller's context ended.
type callerError struct {
	err error
}

func (e *callerError) Error() string { return "caller gone: " + e.err.Error() }
func (e *callerError) Unwrap() error { return e.err }

func callerGone(err error) bool {
	var ce *callerError
	return errors.As(err, &ce)
}
