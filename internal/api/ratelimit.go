// Rate limiting for the endpoints that can spend LLM calls. Calls are
// keyed on the resolved session when the caller sends one, so a chatty
// session cannot starve the rest of the server; anonymous callers share
// a per-address bucket.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// pruneThreshold bounds the tracked-caller map before stale windows are
// swept.
const pruneThreshold = 4096

// RateLimiter caps calls per caller key within a fixed window.
type RateLimiter struct {
	mu    sync.Mutex
	seen  map[string]*callWindow
	limit int
	span  time.Duration
	now   func() time.Time
}

type callWindow struct {
	used  int
	start time.Time
}

// NewRateLimiter allows limit calls per key per span.
func NewRateLimiter(limit int, span time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:  make(map[string]*callWindow),
		limit: limit,
		span:  span,
		now:   time.Now,
	}
}

// Allow consumes one call for key. Expired windows reset in place;
// once the map outgrows the threshold, stale callers are swept under
// the same lock.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.seen) > pruneThreshold {
		rl.prune(now)
	}

	w, ok := rl.seen[key]
	if !ok || now.Sub(w.start) >= rl.span {
		rl.seen[key] = &callWindow{used: 1, start: now}
		return true
	}
	if w.used < rl.limit {
		w.used++
		return true
	}
	return false
}

// RetryAfter reports whole seconds until key's window resets.
func (rl *RateLimiter) RetryAfter(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.seen[key]
	if !ok {
		return 0
	}
	left := rl.span - rl.now().Sub(w.start)
	if left <= 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

func (rl *RateLimiter) prune(now time.Time) {
	for key, w := range rl.seen {
		if now.Sub(w.start) >= rl.span {
			delete(rl.seen, key)
		}
	}
}

// limitKey identifies the caller: the session header when present,
// otherwise the client address (first X-Forwarded-For hop wins behind a
// proxy).
func limitKey(r *http.Request) string {
	if id := r.Header.Get("X-Session-Id"); id != "" {
		return "sess:" + id
	}
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		addr = strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	return "ip:" + addr
}

// RateLimitMiddleware returns 429 with a Retry-After once a caller runs
// dry.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := limitKey(r)
		if !rl.Allow(key) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(key)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
