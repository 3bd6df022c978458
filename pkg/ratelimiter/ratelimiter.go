package ratelimiter

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
)

const defaultPruneInterval = 10 * time.Minute

// Config describes one bucket: Capacity tokens, refilled by RefillRate every RefillInterval.
type Config struct {
	Capacity       int           `env:"LOGIN_RATE_CAPACITY" envDefault:"5"`
	RefillRate     int           `env:"LOGIN_RATE_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"LOGIN_RATE_REFILL_INTERVAL" envDefault:"1m"`
	PruneInterval  time.Duration `env:"LOGIN_RATE_PRUNE_INTERVAL" envDefault:"10m"` // see Limiter.Run
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time // next token available
}

// RetryAfter is how long a denied caller should wait, measured from now.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Option configures Limiter.
type Option func(*Limiter)

// WithClock sets the clock.
func WithClock(c clock.Clock) Option {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithIdleTTL sets how long an unused bucket is kept by Prune.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter is safe for concurrent use.
type Limiter struct {
	cfg     Config
	limit   rate.Limit
	clock   clock.Clock
	idleTTL time.Duration

	mu      sync.Mutex
	buckets map[string]*entry
}

// New validates cfg and creates a Limiter.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		cfg:     cfg,
		limit:   rate.Every(cfg.RefillInterval / time.Duration(cfg.RefillRate)),
		clock:   clock.System(),
		idleTTL: time.Hour,
		buckets: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow takes one token for key.
func (l *Limiter) Allow(key string) Result {
	res, _ := l.AllowN(key, 1)
	return res
}

// AllowN takes n tokens for key, all or nothing.
func (l *Limiter) AllowN(key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}

	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.buckets[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.cfg.Capacity)}
		l.buckets[key] = e
	}
	e.lastAccess = now

	allowed := e.limiter.AllowN(now, n)
	tokens := e.limiter.TokensAt(now)

	res := Result{
		Allowed:   allowed,
		Limit:     l.cfg.Capacity,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetAt:   now,
	}
	if tokens < 1 {
		wait := time.Duration((1 - tokens) / float64(l.limit) * float64(time.Second))
		res.ResetAt = now.Add(wait)
	}
	return res, nil
}

// Reset forgets key, restoring a full bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Prune drops buckets idle for longer than the idle TTL and returns how many were removed.
func (l *Limiter) Prune() int {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.buckets {
		if now.Sub(e.lastAccess) > l.idleTTL {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Run prunes every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPruneInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}
