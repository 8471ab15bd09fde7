/**
 * @description
 * Fixed-window rate limiting backed by Redis. One Lua round trip per check
 * keeps the increment and the expiry atomic across service replicas.
 */

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript bumps the counter and reports how long the window has
// left. A key that lost its expiry (flush, manual edit) is re-armed instead
// of counting forever.
var fixedWindowScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
local remaining = redis.call("PTTL", KEYS[1])
if remaining < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  remaining = tonumber(ARGV[1])
end
return {hits, remaining}
`)

// RedisRateLimiter implements distributed rate limiting using Redis.
type RedisRateLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRateLimiter(client redis.UniversalClient, prefix string) *RedisRateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "payments:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisRateLimiter{
		client: client,
		prefix: trimmedPrefix,
	}
}

// key namespaces a counter per scope and subject under the limiter prefix.
func (r *RedisRateLimiter) key(scope, subject string) string {
	return r.prefix + ":" + scope + ":" + subject
}

func (r *RedisRateLimiter) ConsumeRateLimit(
	ctx context.Context,
	scope string,
	subject string,
	limit int,
	window time.Duration,
) (count int, retryAfterSeconds int, err error) {
	if r == nil || r.client == nil || limit <= 0 || window <= 0 {
		return 0, 0, nil
	}

	scope = strings.TrimSpace(scope)
	subject = strings.TrimSpace(subject)
	if scope == "" || subject == "" {
		return 0, 0, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	reply, err := fixedWindowScript.Run(ctx, r.client, []string{r.key(scope, subject)}, windowMs).Result()
	if err != nil {
		return 0, 0, err
	}

	hits, ttlMs, err := decodeFixedWindowReply(reply)
	if err != nil {
		return 0, 0, err
	}
	if ttlMs < 0 {
		ttlMs = windowMs
	}

	// Round the remaining window up to whole seconds for the Retry-After hint.
	retryAfter := int((ttlMs + 999) / 1000)
	if retryAfter < 1 {
		retryAfter = 1
	}

	return int(hits), retryAfter, nil
}

// decodeFixedWindowReply unpacks the {hits, ttl} pair the script returns.
func decodeFixedWindowReply(reply interface{}) (hits int64, ttlMs int64, err error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis limiter response shape: %T", reply)
	}
	if hits, ok = values[0].(int64); !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	if ttlMs, ok = values[1].(int64); !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}
	return hits, ttlMs, nil
}
