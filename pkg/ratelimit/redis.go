// pkg/ratelimit/redis.go
package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter backed by atomic INCR, safe across
// multiple service instances.
type Redis struct {
	cli *redis.Client
}

func NewRedis(cli *redis.Client) *Redis {
	return &Redis{cli: cli}
}

func (r *Redis) Admit(ctx context.Context, key, endpoint string, limit int) (Result, error) {
	k := "ratelimit:" + endpoint + ":" + key
	n, err := r.cli.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}
	if n == 1 {
		if err := r.cli.Expire(ctx, k, Window).Err(); err != nil {
			return Result{}, err
		}
	}
	ttl, err := r.cli.TTL(ctx, k).Result()
	if err != nil || ttl <= 0 {
		ttl = Window
	}
	resetAt := time.Now().Add(ttl)
	if int(n) > limit {
		retry := int(math.Ceil(ttl.Seconds()))
		if retry < 1 {
			retry = 1
		}
		return Result{Limit: limit, ResetAt: resetAt, RetryAfter: retry}, nil
	}
	remaining := limit - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: limit, Remaining: remaining, ResetAt: resetAt}, nil
}
