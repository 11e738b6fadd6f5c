package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is injected into the API layer rather than living as a global
// singleton; callers decide which key (actor, IP) a request counts against.
type RateLimiter interface {
	// Allow reports whether the request under key may proceed. When it may
	// not, retryAfter hints how long until the window resets.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// FixedWindowLimiter is a fixed-window rate limiter backed by Redis, safe
// across multiple engine instances.
type FixedWindowLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

func NewFixedWindowLimiter(rdb *redis.Client, limit int, window time.Duration, prefix string) *FixedWindowLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "rl"
	}
	return &FixedWindowLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

func (rl *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{rl.prefix + ":" + key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit script result %T", res)
	}
	count, err := toInt64(vals[0])
	if err != nil {
		return false, 0, err
	}
	ttlMs, err := toInt64(vals[1])
	if err != nil {
		return false, 0, err
	}

	if count > int64(rl.limit) {
		retryAfter := time.Duration(ttlMs) * time.Millisecond
		if retryAfter <= 0 {
			retryAfter = rl.window
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		// Lua sometimes returns strings depending on Redis config.
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script value type %T", v)
	}
}
