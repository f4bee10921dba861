package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	commonerrors "github.com/AlibekovAA/bloglist/backend/internal/common/errors"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

type CircuitBreakerInterface interface {
	Call(ctx context.Context, fn func(context.Context) error) error
	State() State
}

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type CircuitBreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the
	// circuit. Zero or less disables the breaker.
	Threshold int32
	// Timeout bounds each protected call. Zero leaves the context as is.
	Timeout time.Duration
	// ResetAfter is how long the circuit stays open before a single trial
	// call is let through.
	ResetAfter time.Duration
	Name       string
	Logger     *logger.Logger
	Clock      clock.Clock
}

// CircuitBreaker guards the repository calls of one service. Only
// infrastructure failures count; expected domain outcomes such as not found
// or conflict never open it.
type CircuitBreaker struct {
	cfg   CircuitBreakerConfig
	clock clock.Clock

	mu       sync.Mutex
	state    State
	failures int32
	openedAt time.Time
	probing  bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	cb := &CircuitBreaker{cfg: cfg, clock: clk}
	cb.publish(StateClosed)
	return cb
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	return cb.state
}

// advance moves an open circuit to half-open once ResetAfter has elapsed.
// Callers hold mu.
func (cb *CircuitBreaker) advance() {
	if cb.state == StateOpen && cb.clock.Now().Sub(cb.openedAt) >= cb.cfg.ResetAfter {
		cb.transition(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	switch to {
	case StateOpen:
		cb.openedAt = cb.clock.Now()
	case StateClosed:
		cb.failures = 0
	}
	cb.probing = false
	cb.publish(to)
	if cb.cfg.Logger != nil {
		cb.cfg.Logger.WithFields(context.Background(), logger.Fields{
			"action":  "circuit_breaker_transition",
			"breaker": cb.cfg.Name,
		}).Warnf("%s -> %s", from, to)
	}
}

func (cb *CircuitBreaker) publish(s State) {
	if cb.cfg.Name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.cfg.Name).Set(float64(s))
	}
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()

	switch cb.state {
	case StateOpen:
		return false
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
	}
	return true
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil || !countsAsFailure(err) {
		if cb.state == StateHalfOpen || err == nil {
			cb.transition(StateClosed)
			cb.failures = 0
		}
		return
	}

	if cb.cfg.Name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.cfg.Name).Inc()
	}
	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.cfg.Threshold {
		cb.transition(StateOpen)
	}
}

// countsAsFailure keeps expected outcomes (missing rows, non-internal domain
// errors, caller cancellation) from tripping the breaker.
func countsAsFailure(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) {
		return false
	}
	if de, ok := commonerrors.AsDomainError(err); ok {
		return de.Category() == commonerrors.CategoryInternal || de.Category() == commonerrors.CategoryExternal
	}
	return true
}

func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if cb.cfg.Threshold <= 0 {
		return cb.run(ctx, fn)
	}

	if !cb.allow() {
		return commonerrors.ErrCircuitOpen
	}

	err := cb.run(ctx, fn)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) run(ctx context.Context, fn func(context.Context) error) error {
	if cb.cfg.Timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, cb.cfg.Timeout)
	defer cancel()
	return fn(callCtx)
}
