package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitWindow  = 15 * time.Minute
	rateLimitMaxFail = 10
)

// Limiter counts failed attempts per key within a sliding window.
type Limiter interface {
	// Blocked reports whether key has exceeded its failures.
	Blocked(ctx context.Context, key string) (bool, error)
	// RecordFailure records a failed attempt and reports whether key is now blocked.
	RecordFailure(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter tracks failures in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	max      int
	now      func() time.Time
}

// NewMemoryLimiter allows max failures per window. Zero values use the defaults.
func NewMemoryLimiter(window time.Duration, max int) *MemoryLimiter {
	if window <= 0 {
		window = rateLimitWindow
	}
	if max <= 0 {
		max = rateLimitMaxFail
	}
	return &MemoryLimiter{
		attempts: make(map[string][]time.Time),
		window:   window,
		max:      max,
		now:      time.Now,
	}
}

// Blocked reports whether key has more than max recent failures.
func (rl *MemoryLimiter) Blocked(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.prune(key)) >= rl.max, nil
}

// RecordFailure records a failed attempt and returns true if rate limited.
func (rl *MemoryLimiter) RecordFailure(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := append(rl.prune(key), rl.now())
	rl.attempts[key] = valid
	return len(valid) >= rl.max, nil
}

// prune drops entries older than the window. Callers hold mu.
func (rl *MemoryLimiter) prune(key string) []time.Time {
	cutoff := rl.now().Add(-rl.window)
	valid := rl.attempts[key][:0]
	for _, t := range rl.attempts[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, key)
		return nil
	}
	rl.attempts[key] = valid
	return valid
}

// RedisLimiter shares failure counts between server instances. Each key
// is a counter that expires one window after its first failure.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
	max    int64
}

// NewRedisLimiter allows max failures per window. Zero values use the defaults.
func NewRedisLimiter(rdb *redis.Client, window time.Duration, max int) *RedisLimiter {
	if window <= 0 {
		window = rateLimitWindow
	}
	if max <= 0 {
		max = rateLimitMaxFail
	}
	return &RedisLimiter{rdb: rdb, window: window, max: int64(max)}
}

func redisLimitKey(key string) string {
	return "ratelimit:" + key
}

// Blocked reports whether key has reached max failures.
func (rl *RedisLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := rl.rdb.Get(ctx, redisLimitKey(key)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading rate limit: %w", err)
	}
	return n >= rl.max, nil
}

// RecordFailure increments key's counter, starting its window on the first failure.
func (rl *RedisLimiter) RecordFailure(ctx context.Context, key string) (bool, error) {
	k := redisLimitKey(key)
	var incr *redis.IntCmd
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, rl.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("recording failure: %w", err)
	}
	return incr.Val() >= rl.max, nil
}
