package api

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// CircuitState is exported as the circuit_state gauge, so the numeric values are stable
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned without touching the network while the breaker is open
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitBreaker guards one marketplace (steam or tradeupspy). After maxFailures
// consecutive failures it rejects calls for coolDown, then lets a single trial
// request through: success closes it again, failure restarts the cool-down.
type CircuitBreaker struct {
	service     string
	maxFailures int
	coolDown    time.Duration
	clock       shared.Clock

	mu          sync.Mutex
	state       CircuitState
	failures    int
	lastFailure time.Time
	probing     bool // a half-open trial is in flight
}

// NewCircuitBreaker creates a closed breaker. A nil clock uses the real clock.
func NewCircuitBreaker(service string, maxFailures int, coolDown time.Duration, clock shared.Clock) *CircuitBreaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		service:     service,
		maxFailures: maxFailures,
		coolDown:    coolDown,
		clock:       clock,
	}
}

// Call runs fn unless the breaker is open. The lock is released while fn runs,
// since fn may sleep through retries.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitHalfOpen:
		if cb.probing {
			return fmt.Errorf("%w: %s trial request pending", ErrCircuitOpen, cb.service)
		}
	default:
		if wait := cb.coolDown - cb.clock.Now().Sub(cb.lastFailure); wait > 0 {
			return fmt.Errorf("%w: %s retry in %s", ErrCircuitOpen, cb.service, wait.Round(time.Second))
		}
		cb.transition(CircuitHalfOpen)
	}
	cb.probing = true
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	cb.probing = false
	cb.failures++
	cb.lastFailure = cb.clock.Now()

	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		cb.transition(CircuitOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.probing = false
	cb.failures = 0
	if cb.state != CircuitClosed {
		cb.transition(CircuitClosed)
	}
}

func (cb *CircuitBreaker) transition(state CircuitState) {
	cb.state = state
	metrics.SetCircuitState(cb.service, int(state))
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the consecutive failure count
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset closes the breaker and clears the failure count
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.probing = false
	cb.transition(CircuitClosed)
}
