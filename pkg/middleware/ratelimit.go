package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"restaurant-directory/pkg/utils"

	"go.uber.org/zap"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a per-client-IP token bucket.
type Limiter struct {
	mu        sync.Mutex
	rate      float64 // tokens/sec
	burst     float64
	clients   map[string]*bucket
	ttl       time.Duration
	lastPrune time.Time
	now       func() time.Time
}

func NewLimiter(cfg utils.RateLimitConfig) *Limiter {
	return &Limiter{
		rate:      cfg.Rate,
		burst:     cfg.Burst,
		clients:   make(map[string]*bucket),
		ttl:       10 * time.Minute,
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

// Allow takes one token for key. When the bucket is empty it reports how long
// until the next token is available.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	b, ok := l.clients[key]
	if !ok {
		b = &bucket{tokens: l.burst, last: now}
		l.clients[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(l.burst, b.tokens+elapsed*l.rate)
		b.last = now
	}

	if b.tokens < 1 {
		if l.rate <= 0 {
			return false, time.Minute
		}
		wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
		return false, wait
	}
	b.tokens--
	return true, 0
}

func (l *Limiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < 2*time.Minute {
		return
	}
	l.lastPrune = now

	for key, b := range l.clients {
		if now.Sub(b.last) > l.ttl {
			delete(l.clients, key)
		}
	}
}

// RateLimit answers 429 once a client IP exhausts its bucket.
func RateLimit(l *Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r)
			ok, wait := l.Allow(ip)
			if !ok {
				secs := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				logger.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
				utils.ResponseTooManyRequests(w, "Too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
