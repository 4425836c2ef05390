package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dzlegal-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a fixed-window counter per key kept in process memory
type MemoryLimiter struct {
	mu      sync.Mutex
	rate    int
	window  time.Duration
	windows map[string]*counter
	now     func() time.Time
}

type counter struct {
	count   int
	started time.Time
}

// NewMemoryLimiter allows rate requests per window for each key
func NewMemoryLimiter(rate int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		rate:    rate,
		window:  window,
		windows: make(map[string]*counter),
		now:     time.Now,
	}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.started) >= l.window {
		if len(l.windows) > 10000 {
			l.sweep(now)
		}
		l.windows[key] = &counter{count: 1, started: now}
		return true, nil
	}
	if w.count >= l.rate {
		return false, nil
	}
	w.count++
	return true, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.started) >= l.window {
			delete(l.windows, k)
		}
	}
}

// RedisLimiter shares the fixed-window counters between server instances
type RedisLimiter struct {
	client *redis.Client
	rate   int
	window time.Duration
}

// NewRedisLimiter allows rate requests per window for each key
func NewRedisLimiter(client *redis.Client, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, rate: rate, window: window}
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := "rate_limit:" + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	return incr.Val() <= int64(l.rate), nil
}

// RateLimit rejects clients over their budget with 429. Limiter errors let
// the request through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), clientIP)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		if !allowed {
			logger.Warn(c.Request.Context(), "rate limit exceeded", "client_ip", clientIP)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "عدد الطلبات كبير، يرجى المحاولة بعد قليل",
				},
			})
			return
		}

		c.Next()
	}
}
