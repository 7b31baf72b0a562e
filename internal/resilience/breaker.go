package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Call while the breaker rejects requests.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	StateClosed   CircuitState = iota // Normal operation
	StateOpen                         // Requests fail immediately
	StateHalfOpen                     // Probing whether the service recovered
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker guards calls to a remote engine.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int
	onChange     func(name string, state CircuitState)
	now          func() time.Time

	mu            sync.Mutex
	state         CircuitState
	failures      int
	halfOpenCalls int
	successes     int
	lastFailure   time.Time
	requests      int64
	totalFailures int64
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  3,
		now:          time.Now,
		state:        StateClosed,
	}
}

// OnStateChange registers a hook called (outside the lock) after every transition.
func (cb *CircuitBreaker) OnStateChange(fn func(name string, state CircuitState)) {
	cb.mu.Lock()
	cb.onChange = fn
	cb.mu.Unlock()
}

// Name returns the guarded service name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Call executes fn if the breaker allows it and records the outcome.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.Record(err == nil)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	var changed bool
	defer func() {
		hook, state := cb.onChange, cb.state
		cb.mu.Unlock()
		if changed && hook != nil {
			hook(cb.name, state)
		}
	}()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) < cb.resetTimeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.halfOpenCalls = 0
		cb.successes = 0
		changed = true
		fallthrough
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.halfOpenMax {
			return false
		}
		cb.halfOpenCalls++
		return true
	}
	return false
}

// Record records the outcome of a call made outside Call.
func (cb *CircuitBreaker) Record(success bool) {
	cb.mu.Lock()
	before := cb.state
	cb.requests++

	if success {
		switch cb.state {
		case StateClosed:
			cb.failures = 0
		case StateHalfOpen:
			cb.successes++
			if cb.successes >= cb.halfOpenMax {
				cb.state = StateClosed
				cb.failures = 0
				cb.halfOpenCalls = 0
				cb.successes = 0
			}
		}
	} else {
		cb.totalFailures++
		cb.lastFailure = cb.now()
		switch cb.state {
		case StateClosed:
			cb.failures++
			if cb.failures >= cb.maxFailures {
				cb.state = StateOpen
			}
		case StateHalfOpen:
			cb.state = StateOpen
			cb.halfOpenCalls = 0
			cb.successes = 0
		}
	}

	after, hook := cb.state, cb.onChange
	cb.mu.Unlock()
	if after != before && hook != nil {
		hook(cb.name, after)
	}
}

// State returns the current state, moving Open to HalfOpen once the reset
// timeout has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Stats returns request and failure totals and the failure rate in percent.
func (cb *CircuitBreaker) Stats() (requests, failures int64, failureRate float64) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	requests, failures = cb.requests, cb.totalFailures
	if requests > 0 {
		failureRate = float64(failures) / float64(requests) * 100.0
	}
	return
}

// Reset returns the breaker to Closed and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenCalls = 0
	cb.successes = 0
	cb.requests = 0
	cb.totalFailures = 0
	cb.mu.Unlock()
}
