package httpmiddleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit returns a gin handler enforcing per-IP limits.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(c.Request.Context(), ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

// RedisCounter limits with a per-minute counter in Redis so the limit holds
// across instances. It fails open when Redis is unavailable.
type RedisCounter struct {
	client    *redis.Client
	perMinute int
}

// NewRedisCounter creates a Redis-backed limiter.
func NewRedisCounter(client *redis.Client, perMinute int) *RedisCounter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RedisCounter{client: client, perMinute: perMinute}
}

// Allow increments the caller's counter for the current minute.
func (r *RedisCounter) Allow(ctx context.Context, key string) bool {
	bucket := "ratelimit:" + key + ":" + time.Now().Format("200601021504")
	n, err := r.client.Incr(ctx, bucket).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		r.client.Expire(ctx, bucket, 2*time.Minute)
	}
	return n <= int64(r.perMinute)
}

// SimpleTokenBucket is an in-memory fallback for single-instance or dev runs.
type SimpleTokenBucket struct {
	capacity int
	rate     int
	mu       sync.Mutex
	state    map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewSimpleTokenBucket creates a limiter with capacity tokens and rate per minute.
func NewSimpleTokenBucket(capacity, perMinute int) *SimpleTokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &SimpleTokenBucket{
		capacity: capacity,
		rate:     perMinute,
		state:    make(map[string]*bucket),
	}
}

// Allow takes one token for key, refilling at the configured rate.
func (l *SimpleTokenBucket) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state[key]
	now := time.Now()
	if !ok {
		b = &bucket{tokens: l.capacity - 1, last: now}
		l.state[key] = b
		return true
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
