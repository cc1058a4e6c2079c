package notify

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects deliveries.
var ErrCircuitOpen = errors.New("notify: circuit open")

// BreakerConfig holds tunable parameters for the Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive delivery failures that
	// opens the circuit. Default: 3.
	MaxFailures int

	// CoolOff is how long the circuit stays open before deliveries are
	// attempted again. Default: 30s.
	CoolOff time.Duration
}

// DefaultBreakerConfig returns production-tuned defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 3,
		CoolOff:     30 * time.Second,
	}
}

// Breaker wraps a Notifier and stops calling it after MaxFailures
// consecutive failures. While open, Notify fails fast with ErrCircuitOpen.
// Once CoolOff has elapsed calls pass through again: the first success
// closes the breaker and the next failure reopens it for another CoolOff.
type Breaker struct {
	cfg  BreakerConfig
	next Notifier

	mu       sync.Mutex
	failures int
	openedAt time.Time

	nowFunc func() time.Time // injectable clock for testing
}

func NewBreaker(cfg BreakerConfig, next Notifier) *Breaker {
	return &Breaker{cfg: cfg, next: next, nowFunc: time.Now}
}

// Open reports whether deliveries are currently being rejected.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openLocked()
}

func (b *Breaker) openLocked() bool {
	if b.failures < b.cfg.MaxFailures {
		return false
	}
	return b.nowFunc().Sub(b.openedAt) < b.cfg.CoolOff
}

func (b *Breaker) Notify(ctx context.Context, m Message) error {
	b.mu.Lock()
	if b.openLocked() {
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	b.mu.Unlock()

	err := b.next.Notify(ctx, m)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		return nil
	}
	b.failures++
	if b.failures >= b.cfg.MaxFailures {
		b.openedAt = b.nowFunc()
	}
	return err
}
