// Package ratelimit enforces the per-host politeness spacing between fetches.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/refsignal/tourney-enrich/internal/metrics"
)

// DefaultMinInterval is the minimum spacing between requests to one host.
const DefaultMinInterval = 500 * time.Millisecond

// HostLimiter owns the host → limiter mapping so politeness state is explicit
// and injectable rather than implicit module state. It is mutex-guarded, but
// cross-process coordination is out of scope: two crawl processes hitting the
// same hosts each keep their own spacing.
type HostLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	minInterval time.Duration
}

// Config holds limiter configuration.
type Config struct {
	MinInterval time.Duration
}

// New creates a HostLimiter.
func New(cfg Config) *HostLimiter {
	interval := cfg.MinInterval
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &HostLimiter{
		limiters:    make(map[string]*rate.Limiter),
		minInterval: interval,
	}
}

// Wait blocks until the host's spacing has elapsed, respecting the context.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.minInterval), 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObservePolitenessWait(host, waited)
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
