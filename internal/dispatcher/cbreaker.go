package dispatcher

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// Breaker gates a single commit strategy. A strategy whose selectors have
// rotted (the external UI shipped a new DOM) fails every contact; after
// failThreshold consecutive failures the strategy is skipped for openFor,
// then a single half-open probe decides whether it rejoins the chain.
type Breaker struct {
	mu        sync.Mutex
	state     breakerState
	fails     int
	threshold int
	openFor   time.Duration
	retryAt   time.Time
	probing   bool

	now func() time.Time // test hook
}

func NewBreaker(threshold int, openFor time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 3
	}
	if openFor <= 0 {
		openFor = time.Minute
	}
	return &Breaker{threshold: threshold, openFor: openFor, now: time.Now}
}

// Ready reports whether the strategy is worth offering to the sequencer.
func (b *Breaker) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		return b.now().After(b.retryAt) && !b.probing
	case stateHalfOpen:
		return !b.probing
	default:
		return true
	}
}

// TryAcquire reserves the strategy for one attempt. In open/half-open state
// only a single probe is allowed in flight.
func (b *Breaker) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return true
	case stateOpen:
		if !b.now().After(b.retryAt) || b.probing {
			return false
		}
		b.state = stateHalfOpen
		b.probing = true
		return true
	default: // half-open
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
}

func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	b.fails = 0
	b.state = stateClosed
	b.probing = false
	b.mu.Unlock()
}

func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen {
		// probe failed, back to open
		b.state = stateOpen
		b.retryAt = b.now().Add(b.openFor)
		b.probing = false
		return
	}

	b.fails++
	if b.fails >= b.threshold {
		b.state = stateOpen
		b.retryAt = b.now().Add(b.openFor)
	}
}
