package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"habitquest/internal/metrics"
)

// KeyFunc picks the identity a limiter counts against. ok=false skips limiting.
type KeyFunc func(c *gin.Context) (key string, ok bool)

func ByIP(c *gin.Context) (string, bool) {
	return c.ClientIP(), true
}

// ByUser counts per authenticated user; it must run after JWT.
func ByUser(c *gin.Context) (string, bool) {
	id, ok := UserID(c)
	if !ok {
		return "", false
	}
	return id.String(), true
}

type clientInfo struct {
	start time.Time
	count int
}

type memoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{clients: make(map[string]*clientInfo), now: time.Now}
}

// hit counts one request in key's current window and returns the new count.
func (l *memoryLimiter) hit(key string, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) >= window {
		ci = &clientInfo{start: now}
		l.clients[key] = ci
	}
	ci.count++

	// Drop expired windows now and then so idle clients do not pile up.
	if len(l.clients) > 10000 {
		for k, v := range l.clients {
			if now.Sub(v.start) >= window {
				delete(l.clients, k)
			}
		}
	}
	return ci.count
}

// SimpleRateLimit is an in-process fixed-window limiter, used when Redis is
// not configured.
func SimpleRateLimit(name string, maxRequests int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	return simpleRateLimit(newMemoryLimiter(), name, maxRequests, window, key)
}

func simpleRateLimit(l *memoryLimiter, name string, maxRequests int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := key(c)
		if !ok {
			c.Next()
			return
		}
		count := l.hit(name+":"+ident, window)
		enforce(c, name, int64(count), maxRequests, window)
	}
}

// enforce sets the rate limit headers and blocks once count exceeds the limit.
func enforce(c *gin.Context, name string, count int64, maxRequests int, window time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-count), 10))

	if count > int64(maxRequests) {
		metrics.RLBlocked.WithLabelValues(name).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"kind":        "RATE_LIMITED",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	metrics.RLRequests.WithLabelValues(name).Inc()
	c.Next()
}
