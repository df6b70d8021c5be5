package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// State of a breaker
type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls are rejected
	StateHalfOpen              // a limited number of trial calls pass through
)

var (
	// ErrCircuitOpen is returned without calling the dependency while the breaker is open
	ErrCircuitOpen = errors.New("circuit breaker is open")

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current state of the circuit breaker (0: Closed, 1: Open, 2: Half-Open)",
		},
		[]string{"name"},
	)

	breakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures seen by the circuit breaker",
		},
		[]string{"name"},
	)

	breakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of calls passed through the circuit breaker",
		},
		[]string{"name", "status"},
	)

	breakerRecoveryTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "circuit_breaker_recovery_duration_seconds",
			Help:    "Time taken to recover from Open to Closed state",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"name"},
	)
)

// Config for a breaker guarding one remote dependency
type Config struct {
	Name             string        // metrics label, e.g. "gotenberg" or "record_store"
	FailureThreshold int           // consecutive failures before opening
	ResetTimeout     time.Duration // time spent open before probing
	HalfOpenMaxCalls int           // trial calls allowed while half-open
	SuccessThreshold int           // trial successes needed to close
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		ResetTimeout:     10 * time.Second,
		HalfOpenMaxCalls: 2,
		SuccessThreshold: 2,
	}
}

// CircuitBreaker fails fast while a dependency is known to be down.
// It never retries: a rejected or failed call is returned to the caller as is.
type CircuitBreaker struct {
	config Config
	state  State

	failures        int
	successes       int
	halfOpenCalls   int
	lastStateChange time.Time
	openStartTime   time.Time

	mu sync.RWMutex
}

func NewCircuitBreaker(config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		config:          config,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
	breakerState.WithLabelValues(config.Name).Set(float64(StateClosed))
	return cb
}

// Execute runs fn unless the breaker is open. Cancellation of ctx by the caller
// is not counted as a dependency failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !cb.allowRequest() {
		breakerRequests.WithLabelValues(cb.config.Name, "rejected").Inc()
		return ErrCircuitOpen
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		cb.releaseTrial()
		breakerRequests.WithLabelValues(cb.config.Name, "cancelled").Inc()
		return err
	}

	cb.handleResult(err)
	if err != nil {
		breakerRequests.WithLabelValues(cb.config.Name, "failure").Inc()
		return err
	}
	breakerRequests.WithLabelValues(cb.config.Name, "success").Inc()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastStateChange) > cb.config.ResetTimeout {
			cb.toHalfOpen()
			cb.halfOpenCalls++
			return true
		}
		return false
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.config.HalfOpenMaxCalls {
			return false
		}
		cb.halfOpenCalls++
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) releaseTrial() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateHalfOpen && cb.halfOpenCalls > 0 {
		cb.halfOpenCalls--
	}
}

func (cb *CircuitBreaker) handleResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

func (cb *CircuitBreaker) onFailure() {
	breakerFailures.WithLabelValues(cb.config.Name).Inc()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.toOpen()
		}
	case StateHalfOpen:
		cb.toOpen()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.toClosed()
		}
	}
}

func (cb *CircuitBreaker) transition(to State) {
	cb.state = to
	cb.lastStateChange = time.Now()
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCalls = 0
	breakerState.WithLabelValues(cb.config.Name).Set(float64(to))
}

func (cb *CircuitBreaker) toOpen() {
	cb.transition(StateOpen)
	cb.openStartTime = cb.lastStateChange
}

func (cb *CircuitBreaker) toHalfOpen() {
	cb.transition(StateHalfOpen)
}

func (cb *CircuitBreaker) toClosed() {
	cb.transition(StateClosed)
	if !cb.openStartTime.IsZero() {
		breakerRecoveryTime.WithLabelValues(cb.config.Name).Observe(time.Since(cb.openStartTime).Seconds())
		cb.openStartTime = time.Time{}
	}
}

// Name is the label the breaker reports under.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// IsHealthy reports whether calls would currently be let through.
func (cb *CircuitBreaker) IsHealthy() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state == StateClosed || (cb.state == StateHalfOpen && cb.halfOpenCalls < cb.config.HalfOpenMaxCalls)
}

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}
