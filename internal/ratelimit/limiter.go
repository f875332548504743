package ratelimit

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// sourceState tracks the spacing for one upstream source.
// Guarded by its own mutex so sources never block one another.
type sourceState struct {
	mu          sync.Mutex
	lastCallAt  time.Time
	minInterval time.Duration
	maxInterval time.Duration // equal to minInterval for fixed sources
}

// Limiter enforces a minimum spacing between calls per registered source.
type Limiter struct {
	mu      sync.Mutex
	sources map[string]*sourceState
	logger  *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithClock injects the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithSleep injects the wait function. For tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		l.sleep = sleep
	}
}

// New creates an empty limiter. Register sources before acquiring.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		sources: make(map[string]*sourceState),
		logger:  slog.Default(),
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds a source with a fixed interval between calls.
func (l *Limiter) Register(source string, interval time.Duration) {
	l.RegisterJitter(source, interval, interval)
}

// RegisterJitter adds a source whose interval is drawn uniformly from
// [min, max] on every acquire.
func (l *Limiter) RegisterJitter(source string, min, max time.Duration) {
	if max < min {
		max = min
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[source] = &sourceState{
		minInterval: min,
		maxInterval: max,
	}
}

// Acquire blocks until the source's interval has elapsed since the previous
// acquire, records the new timestamp, and returns. Unknown sources pass
// through without waiting. A cancelled context aborts the wait without
// consuming the slot.
func (l *Limiter) Acquire(ctx context.Context, source string) error {
	l.mu.Lock()
	st, ok := l.sources[source]
	l.mu.Unlock()
	if !ok {
		l.logger.Debug("acquire for unregistered source", "source", source)
		return nil
	}

	// Waiters for the same source queue here in arrival order.
	st.mu.Lock()
	defer st.mu.Unlock()

	interval := st.minInterval
	if st.maxInterval > st.minInterval {
		interval = st.minInterval + time.Duration(rand.Int64N(int64(st.maxInterval-st.minInterval)))
	}

	if !st.lastCallAt.IsZero() {
		elapsed := l.now().Sub(st.lastCallAt)
		if wait := interval - elapsed; wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	st.lastCallAt = l.now()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
