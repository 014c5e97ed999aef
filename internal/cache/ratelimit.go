package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kizofa/kizofa/internal/ratelimit"
)

// rateLimitAuthPrefix is the Redis key prefix for auth endpoint rate limits.
const rateLimitAuthPrefix = "ratelimit:auth:"

// fixedWindowScript is a Lua script implementing a fixed-window counter.
// It resets the window once its size has elapsed, then increments and
// checks atomically so concurrent requests cannot lose updates.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])     -- max calls per window
	local window = tonumber(ARGV[2])    -- window size in seconds
	local now = tonumber(ARGV[3])       -- current time in seconds

	local data = redis.call('HMGET', key, 'count', 'window_start')
	local count = tonumber(data[1]) or 0
	local window_start = tonumber(data[2]) or now

	-- Reset an elapsed window before counting this call
	if now - window_start >= window then
		count = 0
		window_start = now
	end

	count = count + 1

	local allowed = 0
	if count <= limit then
		allowed = 1
	end

	redis.call('HMSET', key, 'count', count, 'window_start', window_start)
	redis.call('EXPIRE', key, window * 2)

	return {allowed, math.max(limit - count, 0), window_start + window}
`)

// Limiter returns a ratelimit.Limiter backed by this cache.
func (c *Cache) Limiter(limit int, window time.Duration) ratelimit.Limiter {
	return &redisLimiter{cache: c, limit: limit, window: window}
}

type redisLimiter struct {
	cache  *Cache
	limit  int
	window time.Duration
}

// Allow checks and updates the window for the given client key.
// The key is hashed to avoid storing raw IP addresses.
func (l *redisLimiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	now := time.Now()
	redisKey := rateLimitAuthPrefix + hashKey(key)

	result, err := fixedWindowScript.Run(ctx, l.cache.client,
		[]string{redisKey},
		l.limit, int(l.window.Seconds()), now.Unix(),
	).Int64Slice()

	if err != nil || len(result) != 3 {
		// Fail open on Redis errors - allow the request
		return &ratelimit.Result{
			Allowed:   true,
			Remaining: int64(l.limit),
			ResetAt:   now.Add(l.window),
		}, nil
	}

	resetAt := time.Unix(result[2], 0)
	res := &ratelimit.Result{
		Allowed:   result[0] == 1,
		Remaining: result[1],
		ResetAt:   resetAt,
	}

	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now)
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}

	return res, nil
}

// hashKey creates a truncated SHA256 hash of a client key.
// This provides privacy while maintaining uniqueness.
func hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
