// Package circuit trips after repeated backend failures so callers fail fast
// instead of queueing behind a dead dependency.
package circuit

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	// StateHalfOpen admits exactly one probe call.
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half_open",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "closed"
}

// StateChange reports whether a Record call flipped the breaker. A failed
// half-open probe reports neither flag because the breaker was already
// counted as open.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker counts consecutive failures. Callers pass the clock in so the
// cooldown follows the same time source as the ledger.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5. Non-positive values are ignored.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown defaults to 10s. Non-positive values are ignored.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{name: name, threshold: 5, cooldown: 10 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow moves an open breaker to half-open once the cooldown has passed and
// lets that one caller through.
func (b *Breaker) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		return true
	}
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.cooldown {
		b.state = StateHalfOpen
		return true
	}
	return false
}

func (b *Breaker) RecordFailure(now time.Time) StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	trip := b.state == StateHalfOpen ||
		(b.state == StateClosed && b.failures >= b.threshold)
	if !trip {
		return StateChange{}
	}
	opened := b.state == StateClosed
	b.state = StateOpen
	b.openedAt = now
	return StateChange{Opened: opened}
}

func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	reopened := b.state != StateClosed
	b.state = StateClosed
	return StateChange{Closed: reopened}
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	b.state, b.failures = StateClosed, 0
	b.mu.Unlock()
}
