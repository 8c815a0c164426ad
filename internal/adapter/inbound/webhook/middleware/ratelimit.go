package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxVisitors   = 10000
	visitorMaxAge = 10 * time.Minute
	sweepInterval = 5 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per remote IP. Stale entries are swept
// lazily on access.
type rateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	limit      rate.Limit
	burst      int
	lastSweep  time.Time
	trustProxy bool
	now        func() time.Time
}

func newRateLimiter(requestsPerMinute int, trustProxy bool) *rateLimiter {
	return &rateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      rate.Limit(float64(requestsPerMinute) / time.Minute.Seconds()),
		burst:      requestsPerMinute,
		lastSweep:  time.Now(),
		trustProxy: trustProxy,
		now:        time.Now,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval || len(rl.visitors) >= maxVisitors {
		rl.evictStale(now)
	}

	v, ok := rl.visitors[ip]
	if !ok {
		// Still full after sweeping: reject new IPs rather than grow.
		if len(rl.visitors) >= maxVisitors {
			return false
		}
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// evictStale must be called with mu held.
func (rl *rateLimiter) evictStale(now time.Time) {
	cutoff := now.Add(-visitorMaxAge)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// NewRateLimiter returns a middleware that limits requests per minute per
// remote IP. A non-positive limit disables limiting.
func NewRateLimiter(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := newRateLimiter(requestsPerMinute, false)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(remoteIP(r, rl.trustProxy)) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// remoteIP extracts the client IP from the request.
// Only trusts X-Forwarded-For when trustProxy is true.
func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
	}
	// Strip port from RemoteAddr.
	addr := r.RemoteAddr
	if idx := strings.LastIndexByte(addr, ':'); idx != -1 {
		return addr[:idx]
	}
	return addr
}
