// Package breaker implements a CLOSED/OPEN/HALF_OPEN circuit breaker
// guarding calls to a flaky upstream (an LLM or search provider).
// A single Breaker is shared process-wide per upstream.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is one of the breaker's three states.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Allow (and by Do, without invoking fn) when the
// breaker is OPEN and the timeout has not yet elapsed.
var ErrOpen = errors.New("breaker: circuit open")

// ErrHalfOpenLimit is returned when HALF_OPEN has already admitted its
// quota of probe calls and a further call arrives before the state
// transitions.
var ErrHalfOpenLimit = errors.New("breaker: half-open probe limit reached")

// Breaker tracks consecutive upstream failures. After FailureThreshold
// consecutive failures it trips OPEN and rejects calls for Timeout. Once
// Timeout elapses it moves to HALF_OPEN and admits up to HalfOpenMax
// trial calls; a single failure during HALF_OPEN reopens the circuit,
// while HalfOpenMax consecutive successes close it.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	timeout          time.Duration
	halfOpenMax      int

	state          State
	consecutiveErr int
	openedAt       time.Time
	halfOpenInFlt  int
	halfOpenOK     int

	nowFunc func() time.Time
}

// Option configures a Breaker at construction time.
type Option func(*Breaker)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.nowFunc = now }
}

// New builds a Breaker, defaulting to failureThreshold=3, timeout=120s,
// halfOpenMax=3 when a non-positive value is passed for the
// corresponding parameter.
func New(failureThreshold int, timeout time.Duration, halfOpenMax int, opts ...Option) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if halfOpenMax <= 0 {
		halfOpenMax = 3
	}
	b := &Breaker{
		failureThreshold: failureThreshold,
		timeout:          timeout,
		halfOpenMax:      halfOpenMax,
		state:            Closed,
		nowFunc:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State reports the breaker's current state, transitioning OPEN to
// HALF_OPEN first if the timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeTransitionToHalfOpen()
	return b.state
}

// Allow reports whether a call may proceed right now, reserving a
// HALF_OPEN probe slot if applicable. Callers that get a nil error MUST
// report the outcome via Success or Failure exactly once.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeTransitionToHalfOpen()

	switch b.state {
	case Open:
		return ErrOpen
	case HalfOpen:
		if b.halfOpenInFlt >= b.halfOpenMax {
			return ErrHalfOpenLimit
		}
		b.halfOpenInFlt++
		return nil
	default:
		return nil
	}
}

// maybeTransitionToHalfOpen moves OPEN to HALF_OPEN once Timeout has
// elapsed since the trip. Caller must hold mu.
func (b *Breaker) maybeTransitionToHalfOpen() {
	if b.state != Open {
		return
	}
	if b.nowFunc().Sub(b.openedAt) >= b.timeout {
		b.state = HalfOpen
		b.halfOpenInFlt = 0
		b.halfOpenOK = 0
	}
}

// Success records a successful call. In HALF_OPEN, HalfOpenMax
// consecutive successes close the circuit.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveErr = 0
	switch b.state {
	case HalfOpen:
		if b.halfOpenInFlt > 0 {
			b.halfOpenInFlt--
		}
		b.halfOpenOK++
		if b.halfOpenOK >= b.halfOpenMax {
			b.state = Closed
			b.halfOpenOK = 0
		}
	case Closed:
		// already healthy
	}
}

// Failure records a failed call. Only a 429/rate-limit failure
// (is429) counts toward tripping the circuit: in CLOSED,
// FailureThreshold consecutive 429s trips the circuit OPEN; in
// HALF_OPEN, a single 429 reopens it immediately. Non-429 failures
// (timeouts, 5xx) still release a HALF_OPEN probe slot but otherwise
// leave the breaker's state untouched.
func (b *Breaker) Failure(is429 bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		if b.halfOpenInFlt > 0 {
			b.halfOpenInFlt--
		}
		if is429 {
			b.trip()
		}
	case Closed:
		if !is429 {
			return
		}
		b.consecutiveErr++
		if b.consecutiveErr >= b.failureThreshold {
			b.trip()
		}
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.nowFunc()
	b.consecutiveErr = 0
	b.halfOpenInFlt = 0
	b.halfOpenOK = 0
}

// Do runs fn if the breaker currently allows it, and records the
// outcome. It returns ErrOpen/ErrHalfOpenLimit without invoking fn when
// the breaker rejects the call, and otherwise returns fn's error
// unchanged. is429 classifies fn's error as rate-limit-class or not;
// only rate-limit-class failures count toward tripping the circuit.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error, is429 func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn(ctx)
	if err != nil {
		b.Failure(is429(err))
		return err
	}
	b.Success()
	return nil
}
