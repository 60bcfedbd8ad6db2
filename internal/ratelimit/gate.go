// Package ratelimit holds the per-source request gate. Each upstream
// site gets its own Gate instance, constructed once per run and passed
// by reference; there is no shared static state between sources.
package ratelimit

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

type Config struct {
	// BaseDelay is the minimum interval between two requests to the
	// source when everything is healthy.
	BaseDelay time.Duration

	// JitterFrac spreads each delay by ±frac/2 around its target so
	// parallel processes do not sync up. Keep below 2/3 or backoff
	// steps start overlapping.
	JitterFrac float64

	// MaxRetries is the consecutive-failure budget before the gate
	// reports exhausted.
	MaxRetries int

	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration
}

// Gate enforces a minimum, jittered, exponentially backed-off interval
// between requests to one source. It never drops or queues work, it
// only delays the caller.
type Gate struct {
	mu       sync.Mutex
	cfg      Config
	failures int
	lastAt   time.Time
	rng      *rand.Rand
}

func New(cfg Config) *Gate {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Gate{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay reports the interval currently required before the next
// request, given the consecutive-failure count so far.
func (g *Gate) Delay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delayLocked()
}

func (g *Gate) delayLocked() time.Duration {
	target := float64(g.cfg.BaseDelay)
	if g.failures > 0 {
		target *= math.Pow(2, float64(g.failures))
		if capped := float64(g.cfg.MaxBackoff); target > capped {
			target = capped
		}
	}
	// jitter in [1-frac/2, 1+frac/2)
	if g.cfg.JitterFrac > 0 {
		target *= 1 + g.cfg.JitterFrac*(g.rng.Float64()-0.5)
	}
	return time.Duration(target)
}

// Wait blocks until the required interval since the previous request
// has elapsed, then stamps the request as issued. Returns early with
// the context error on cancellation.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	wakeAt := g.lastAt.Add(g.delayLocked())
	if now := time.Now(); wakeAt.Before(now) {
		wakeAt = now
	}
	// Claim the slot before sleeping, so concurrent callers queue up
	// behind each other instead of all reading the same stamp.
	g.lastAt = wakeAt
	g.mu.Unlock()

	if remaining := time.Until(wakeAt); remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// Reset clears the failure counter without recording an outcome. Used
// when a caller abandons a fetch so the next scheduled attempt starts
// from the base delay.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.failures = 0
	g.mu.Unlock()
}

// Success resets the consecutive-failure counter.
func (g *Gate) Success() {
	g.mu.Lock()
	g.failures = 0
	g.mu.Unlock()
}

// Failure registers one more consecutive failure, growing the next delay.
func (g *Gate) Failure() {
	g.mu.Lock()
	g.failures++
	g.mu.Unlock()
}

// Exhausted reports whether the consecutive-failure count has reached
// the retry budget. The caller should abandon the current fetch attempt.
func (g *Gate) Exhausted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures >= g.cfg.MaxRetries
}

// Failures exposes the current consecutive-failure count.
func (g *Gate) Failures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures
}
