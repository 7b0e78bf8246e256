package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/aiready-backend/internal/response"
)

// RateLimiter is a fixed-window limiter keyed by session ID, falling back to
// the client IP for anonymous requests.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*window
	limit    int
	interval time.Duration
	now      func() time.Time
}

type window struct {
	started time.Time
	used    int
}

// NewRateLimiter allows limit requests per interval for each client. Stale
// clients are dropped until ctx is cancelled.
func NewRateLimiter(ctx context.Context, limit int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*window),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}

	go func() {
		ticker := time.NewTicker(interval)
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

	return rl
}

// Allow consumes one request for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.started) >= rl.interval {
		w = &window{started: now}
		rl.clients[key] = w
	}

	if w.used >= rl.limit {
		return false
	}
	w.used++
	return true
}

// Middleware returns a Gin middleware enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetSessionID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		if !rl.Allow(key) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, w := range rl.clients {
		if now.Sub(w.started) >= rl.interval {
			delete(rl.clients, key)
		}
	}
}
