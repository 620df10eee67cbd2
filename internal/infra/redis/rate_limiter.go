package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter implements per-user command cooldowns on top of Redis.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow reports whether another event is permitted for key within the window.
// On a Redis failure it fails open; a lost cooldown is preferable to a dead bot.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return true, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			// Never leave a counter without a TTL: it would lock the
			// user out permanently once it passes the limit.
			_ = r.client.Del(ctx, key)
			return true, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

func UserCommandKey(userID int64, command string) string {
	return fmt.Sprintf("rate_limit:%d:%s", userID, command)
}
