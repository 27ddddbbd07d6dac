package httpmiddleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the sliding window rate limiter.
type RateLimitConfig struct {
	// Max is the maximum number of requests allowed per window.
	Max int
	// Window is the duration of each sliding window.
	Window time.Duration
	// KeyFunc extracts the rate limit key from a request.
	// If nil, the client IP address is used.
	KeyFunc func(*http.Request) string
}

// entry tracks request counts across two adjacent windows; the previous
// window's count is weighted by its remaining overlap to approximate a true
// sliding window.
type entry struct {
	prevCount int
	currCount int
	currStart time.Time
}

type rateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// allow reports whether a request under key fits in the current window.
func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[key]
	if !ok {
		e = &entry{currStart: now}
		rl.entries[key] = e
	}

	elapsed := now.Sub(e.currStart)
	switch {
	case elapsed >= 2*rl.cfg.Window:
		e.prevCount, e.currCount = 0, 0
		e.currStart = now
		elapsed = 0
	case elapsed >= rl.cfg.Window:
		e.prevCount, e.currCount = e.currCount, 0
		e.currStart = e.currStart.Add(rl.cfg.Window)
		elapsed -= rl.cfg.Window
	}

	weight := 1 - float64(elapsed)/float64(rl.cfg.Window)
	estimated := float64(e.prevCount)*weight + float64(e.currCount)
	if estimated >= float64(rl.cfg.Max) {
		return false
	}

	e.currCount++
	return true
}

// cleanup drops entries idle for two full windows.
func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.cfg.Window)
	for key, e := range rl.entries {
		if e.currStart.Before(cutoff) {
			delete(rl.entries, key)
		}
	}
}

// RateLimitWithCleanup returns a sliding-window rate limiting middleware and
// starts a background goroutine (stopped by ctx) that evicts idle clients.
// Rejected requests receive 429 with a Retry-After header.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	rl := &rateLimiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
		now:     time.Now,
	}

	go func() {
		ticker := time.NewTicker(cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(cfg.KeyFunc(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys on the first X-Forwarded-For hop when present (the gateway
// terminates client connections), falling back to the remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
