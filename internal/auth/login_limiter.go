package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/spec-kit/membership-portal/internal/clock"
)

// DefaultLimiterIdleTTL is how long an IP's limiter survives without
// sign-in attempts.
const DefaultLimiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter throttles sign-in attempts per client IP. Limiters of IPs
// idle for longer than the idle TTL are dropped.
type IPRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	clock     clock.Clock
	lastSweep time.Time
}

// NewIPRateLimiter allows rps attempts per second per IP with the given
// burst. A non-positive rps disables throttling.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	clk := clock.Real()
	return &IPRateLimiter{
		limiters:  make(map[string]*ipLimiter),
		rate:      limit,
		burst:     burst,
		idleTTL:   DefaultLimiterIdleTTL,
		clock:     clk,
		lastSweep: clk.Now(),
	}
}

// GetLimiter returns the rate limiter for an IP.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.clock.Now()
	if now.Sub(i.lastSweep) >= i.idleTTL {
		i.sweep(now)
	}
	entry, exists := i.limiters[ip]
	if !exists {
		entry = &ipLimiter{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops idle limiters. Callers hold mu.
func (i *IPRateLimiter) sweep(now time.Time) {
	for ip, entry := range i.limiters {
		if now.Sub(entry.lastSeen) >= i.idleTTL {
			delete(i.limiters, ip)
		}
	}
	i.lastSweep = now
}

// Len returns the number of tracked IPs.
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.limiters)
}

// Allow reports whether ip may attempt another sign-in now.
func (i *IPRateLimiter) Allow(ip string) bool {
	if i == nil {
		return true
	}
	return i.GetLimiter(ip).Allow()
}
