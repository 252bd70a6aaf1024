package adminapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// rateLimiterCleanupInterval is how often idle per-IP limiters are swept.
// The teacher derives this from config (pkg/server/ratelimit.go's
// cfg.RateLimitCleanupInterval); this engine's Config has no equivalent
// field since nothing else needed it tunable, so it is a constant here.
const rateLimiterCleanupInterval = time.Minute

// rateLimiter enforces a per-caller-IP token bucket over the admin API
// (SPEC_FULL.md's ambient rate-limiting carryover), adapted from the
// teacher's pkg/server/ratelimit.go.
type rateLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*rateLimiterEntry
	requestsPerSecond rate.Limit
	burst             int
	maxAge            time.Duration
	cancel            context.CancelFunc
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// newRateLimiter builds a rateLimiter and starts its background cleanup
// goroutine. It always limits; with DUSKWARD_RATE_LIMIT_ENABLED=false the
// server builds no limiter and the middleware passes every request through.
func newRateLimiter(requestsPerSecond float64, burst int) *rateLimiter {
	ctx, cancel := context.WithCancel(context.Background())
	rl := &rateLimiter{
		limiters:          make(map[string]*rateLimiterEntry),
		requestsPerSecond: rate.Limit(requestsPerSecond),
		burst:             burst,
		maxAge:            rateLimiterCleanupInterval * 5,
		cancel:            cancel,
	}
	go rl.cleanupLoop(ctx)
	return rl
}

func (rl *rateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.requestsPerSecond, rl.burst), lastAccess: time.Now()}
		rl.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	return entry.limiter.Allow()
}

func (rl *rateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	removed := 0
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastAccess) > rl.maxAge {
			delete(rl.limiters, ip)
			removed++
		}
	}
	if removed > 0 {
		logrus.WithField("removed_limiters", removed).Debug("adminapi: cleaned up expired rate limiters")
	}
}

func (rl *rateLimiter) Close() {
	if rl.cancel != nil {
		rl.cancel()
	}
}

// rateLimitingMiddleware enforces rl per caller IP, responding 429 over
// the limit. A nil rl disables rate limiting entirely.
func rateLimitingMiddleware(rl *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl == nil {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIP(r)
			if !rl.Allow(ip) {
				loggerFromContext(r.Context()).WithField("client_ip", ip).Warn("admin request rate limited")
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
