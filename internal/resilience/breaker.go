package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type BreakerConfig struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before letting a probe through.
	Cooldown time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	}
}

// Breaker fails calls fast after repeated failures. While half-open exactly one
// probe is in flight; its outcome closes or re-opens the breaker.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// must hold mu
func (b *Breaker) currentState() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return StateHalfOpen
	}
	return b.state
}

func (b *Breaker) Do(fn func() error) error {
	probe, err := b.before()
	if err != nil {
		return err
	}
	err = fn()
	b.after(probe, err)
	return err
}

// before reports whether the admitted call is the half-open probe.
func (b *Breaker) before() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState() {
	case StateOpen:
		return false, ErrBreakerOpen
	case StateHalfOpen:
		if b.probing {
			return false, ErrBreakerOpen
		}
		b.state = StateHalfOpen
		b.probing = true
		return true, nil
	}
	return false, nil
}

func (b *Breaker) after(probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if probe {
		b.probing = false
	} else if b.state != StateClosed {
		// admitted before the breaker opened; only the probe decides from here
		return
	}

	if err == nil {
		b.failures = 0
		b.state = StateClosed
		return
	}

	b.failures++
	if probe || b.failures >= b.cfg.FailureThreshold {
		b.state = StateOpen
		b.openedAt = b.now()
	}
}
