package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitStore implements RateLimitStore on Redis so limits are
// shared across server instances. It uses a fixed window counter keyed by
// (key, window start). Fails open: a Redis error allows the request and
// counts in metrics, since dropping traffic because the limiter is down is
// worse than briefly not limiting.
type RedisRateLimitStore struct {
	client  *redis.Client
	metrics *Metrics // Optional; counts fail-open events
}

// NewRedisRateLimitStore creates a Redis-backed rate limit store.
func NewRedisRateLimitStore(client *redis.Client, metrics *Metrics) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		client:  client,
		metrics: metrics,
	}
}

// Allow checks if a request from the given key should be allowed.
// Implements the RateLimitStore interface.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, int) {
	now := time.Now()
	windowStart := now.Truncate(config.WindowDuration)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Expire slightly after the window so a clock-skewed reader still sees
	// the final count.
	pipe.Expire(ctx, redisKey, config.WindowDuration+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.WarnContext(ctx, "rate limit check failed, allowing request",
			"key", key,
			"error", err)
		if s.metrics != nil {
			s.metrics.IncRateLimitRedisErrors()
		}
		return true, 0
	}

	if incr.Val() <= int64(config.RequestsPerWindow) {
		return true, 0
	}

	retryAfter := int(windowStart.Add(config.WindowDuration).Sub(now).Seconds())
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return false, retryAfter
}
