// Package ratelimit throttles vote spam per client IP. The limiter is
// optional: without Redis configured every vote is allowed, matching the
// historical behavior of the funnel.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter answers whether one more vote is allowed under key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// VoteKey buckets votes per client IP and candidate.
func VoteKey(ip, applicationID string) string {
	return fmt.Sprintf("vote:%s:%s", ip, applicationID)
}

// Disabled allows everything.
type Disabled struct{}

func (Disabled) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

// RedisLimiter is a fixed-window counter: INCR per key, EXPIRE on first
// hit. Windows are approximate, which is fine for abuse damping.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewRedis(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: int64(limit), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}
