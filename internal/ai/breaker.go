package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/streakedin/streakedin/internal/metrics"
)

// BreakerState is the circuit state.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerHalfOpen:
		return "half-open"
	case BreakerOpen:
		return "open"
	}
	return "unknown"
}

// BreakerConfig tunes a Breaker. Zero values fall back to defaults.
type BreakerConfig struct {
	FailureThreshold int
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	Now              func() time.Time
}

// BreakerStatus is a point-in-time view of a Breaker.
type BreakerStatus struct {
	State       string     `json:"state"`
	Failures    int        `json:"failures"`
	LastFailure *time.Time `json:"lastFailure,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
	RetryAt     *time.Time `json:"retryAt,omitempty"`
}

// Breaker guards calls to the AI provider. After FailureThreshold consecutive
// failures it opens for an exponentially growing cool-down, then lets a single
// half-open probe through.
type Breaker struct {
	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	lastErr     string
	openUntil   time.Time
	probing     bool
	threshold   int
	cooldown    *backoff.ExponentialBackOff
	now         func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.InitialBackoff
	eb.MaxInterval = cfg.MaxBackoff
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()

	b := &Breaker{threshold: cfg.FailureThreshold, cooldown: eb, now: cfg.Now}
	metrics.BreakerState.Set(float64(BreakerClosed))
	return b
}

// Allow reports whether a call may proceed. A true result must be followed
// by exactly one Done.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.now().Before(b.openUntil) {
			return false
		}
		b.setState(BreakerHalfOpen)
		b.probing = true
		return true
	default:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
}

// Done records the outcome of an allowed call. Caller cancellation is not a
// provider failure and only releases the probe slot.
func (b *Breaker) Done(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	switch {
	case err == nil:
		b.failures = 0
		b.cooldown.Reset()
		b.setState(BreakerClosed)
	case errors.Is(err, context.Canceled):
	default:
		b.failures++
		b.lastFailure = b.now()
		b.lastErr = err.Error()
		if b.state == BreakerHalfOpen || b.failures >= b.threshold {
			b.openUntil = b.lastFailure.Add(b.cooldown.NextBackOff())
			b.setState(BreakerOpen)
		}
	}
}

// Reset closes the circuit and forgets past failures.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probing = false
	b.lastErr = ""
	b.lastFailure = time.Time{}
	b.openUntil = time.Time{}
	b.cooldown.Reset()
	b.setState(BreakerClosed)
}

// State returns the current state without side effects.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Status returns a snapshot for reporting.
func (b *Breaker) Status() BreakerStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := BreakerStatus{State: b.state.String(), Failures: b.failures, LastError: b.lastErr}
	if !b.lastFailure.IsZero() {
		lf := b.lastFailure
		st.LastFailure = &lf
	}
	if b.state == BreakerOpen {
		ra := b.openUntil
		st.RetryAt = &ra
	}
	return st
}

func (b *Breaker) setState(s BreakerState) {
	b.state = s
	metrics.BreakerState.Set(float64(s))
}
