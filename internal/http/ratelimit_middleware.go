package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleWindow is how long a bucket takes to refill completely. A bucket
// unused for that long is indistinguishable from a new one and is dropped.
const limiterIdleWindow = time.Minute

type identityLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// identityLimiters keeps one token bucket per user id.
type identityLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limiters  map[string]*identityLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newIdentityLimiters(requestsPerMinute int) *identityLimiters {
	return &identityLimiters{
		limit:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    requestsPerMinute,
		limiters: make(map[string]*identityLimiter),
		now:      time.Now,
	}
}

// allow takes one token from userID's bucket, creating it on first use.
func (l *identityLimiters) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) >= limiterIdleWindow {
		l.cleanupIdleLocked(now)
	}
	entry, ok := l.limiters[userID]
	if !ok {
		entry = &identityLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.lim.AllowN(now, 1)
}

func (l *identityLimiters) cleanupIdleLocked(now time.Time) {
	l.lastSweep = now
	for userID, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleWindow {
			delete(l.limiters, userID)
		}
	}
}

// RateLimitMiddleware allows requestsPerMinute per user id, with a burst of the
// same size. Zero or negative disables throttling. Must run after SessionMiddleware.
func RateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimitHandler(newIdentityLimiters(requestsPerMinute))
}

func rateLimitHandler(limiters *identityLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiters.allow(UserIDFromContext(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
