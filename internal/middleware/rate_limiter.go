package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a per-IP fixed-window counter backed by Redis, so the limit
// holds across gateway instances. A nil client disables limiting, and Redis
// errors fail open: a broken limiter must not take payments down with it.
type RateLimiter struct {
	Client *redis.Client
	Scope  string
	Limit  int
	Window time.Duration
}

func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{Client: client, Scope: scope, Limit: limit, Window: window}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Client == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", l.Scope, c.ClientIP())
		ctx := c.Request.Context()

		count, err := l.Client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			l.Client.Expire(ctx, key, l.Window)
		}

		remaining := int64(l.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(l.Limit) {
			ttl, _ := l.Client.TTL(ctx, key).Result()
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
