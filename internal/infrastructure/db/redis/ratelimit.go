package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimiter counts requests per key in fixed windows shared by every
// replica. Key format: <prefix>:<key>:<window slot>
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per key in each window.
func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) (*RateLimiter, error) {
	if limit <= 0 || window < time.Millisecond {
		return nil, errors.New("rate limiter requires a positive limit and window")
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}, nil
}

// Allow reports whether key is still within quota and counts the request.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	count, err := fixedWindowScript.Run(ctx, l.client, []string{l.key(key, slot)}, windowMs).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return count <= int64(l.limit), nil
}

func (l *RateLimiter) key(key string, slot int64) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
}
