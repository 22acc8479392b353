package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"habitquest/internal/logger"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared limiter client. An empty addr or
// a failed ping leaves Redis off and the limiters fall back to in-process
// counting. The client is returned so other components can share it.
func InitRedisRateLimiter(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting in process", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	redisClient = client
	return client
}

// RedisRateLimit is a fixed-window limiter on Redis INCR/EXPIRE.
// key format: rl:<name>:<window_seconds>:<identifier>
// It fails open when Redis is missing or errors.
func RedisRateLimit(name string, maxRequests int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		ident, ok := key(c)
		if !ok {
			c.Next()
			return
		}

		k := "rl:" + name + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
		ctx := c.Request.Context()

		val, err := redisClient.Incr(ctx, k).Result()
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, k, window)
		}

		enforce(c, name, val, maxRequests, window)
	}
}

// RateLimit uses Redis when it is configured and an in-process window otherwise.
func RateLimit(name string, maxRequests int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	mem := SimpleRateLimit(name, maxRequests, window, key)
	rds := RedisRateLimit(name, maxRequests, window, key)
	return func(c *gin.Context) {
		if redisClient != nil {
			rds(c)
			return
		}
		mem(c)
	}
}
