package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window per-user counter in Redis.
// Requests from authenticated callers are keyed by user id so that one
// tenant exhausting its budget cannot starve others behind the same NAT.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter constructs a RateLimiter.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow increments the caller's counter for the current window and
// reports whether the request is within budget. Errors are infrastructure
// failures; callers decide whether to fail open or closed.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if rl == nil || rl.limit <= 0 {
		return true, nil
	}
	bucket := time.Now().Unix() / int64(rl.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= rl.limit, nil
}

// Limit exposes the configured per-window request budget.
func (rl *RateLimiter) Limit() int64 { return rl.limit }

// Window exposes the configured window length.
func (rl *RateLimiter) Window() time.Duration { return rl.window }
