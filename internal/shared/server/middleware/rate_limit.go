package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"jobtailor/internal/shared/server/respond"
)

// RateLimitRule is a token bucket: Rate tokens per second, up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) unlimited() bool { return r.Rate <= 0 || r.Burst <= 0 }

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

type bucketKey struct {
	principal string
	group     string
}

// RateLimiter keeps one token bucket per caller and group.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[bucketKey]*rate.Limiter
	now     func() time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[bucketKey]*rate.Limiter), now: now}
}

// RateLimit rejects requests over their group's budget with 429 rate_limited.
// Callers are identified by session, falling back to client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = "DEFAULT"
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		key := bucketKey{principal: SessionIDFromContext(c), group: group}
		if key.principal == "" {
			key.principal = c.ClientIP()
		}

		wait, allowed := cfg.Limiter.take(key, rule)
		if allowed {
			c.Next()
			return
		}
		if wait < time.Millisecond {
			wait = time.Second
		}
		c.Header("Retry-After", strconv.Itoa(int((wait+time.Second-1)/time.Second)))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"group":        group,
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// Allow takes one token for key under rule, reporting how long until the next
// token when the bucket is empty.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	wait, ok := l.take(bucketKey{principal: key}, rule)
	return ok, wait
}

func (l *RateLimiter) take(key bucketKey, rule RateLimitRule) (time.Duration, bool) {
	if l == nil || rule.unlimited() {
		return 0, true
	}
	now := l.now()

	l.mu.Lock()
	bucket := l.buckets[key]
	if bucket == nil {
		bucket = rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	if bucket.AllowN(now, 1) {
		return 0, true
	}
	res := bucket.ReserveN(now, 1)
	defer res.CancelAt(now)
	if !res.OK() {
		return time.Second, false
	}
	return res.DelayFrom(now), false
}
