/* ratelimit.go
 * A shared minimum-inter-request gate per host class, used before every wiki scrape call to
 * respect the target site's informal rate limit policy. Strictly a fixed minimum gap, not a
 * token bucket with a deep burst: each host class gets a limiter of rate one-per-interval
 * with burst 1, so later callers queue behind the gate rather than being rejected
 */

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"koi-tracker/metrics"
)

// Gate serialises effective request pacing per host class even when logical calls are issued
// concurrently
type Gate struct {
	mu          sync.Mutex
	minInterval time.Duration
	limiters    map[string]*rate.Limiter
}

// NewGate returns a gate enforcing minInterval between permitted calls for each host class
func NewGate(minInterval time.Duration) *Gate {
	return &Gate{
		minInterval: minInterval,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// Wait blocks until at least the minimum interval has elapsed since the last permitted call
// for hostClass, or until ctx is done
func (g *Gate) Wait(ctx context.Context, hostClass string) error {
	g.mu.Lock()
	lim, ok := g.limiters[hostClass]
	if !ok {
		lim = rate.NewLimiter(rate.Every(g.minInterval), 1)
		g.limiters[hostClass] = lim
	}
	g.mu.Unlock()

	start := time.Now()
	err := lim.Wait(ctx)
	metrics.RateLimitWaits.Observe(time.Since(start).Seconds())
	return err
}
