package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR and PEXPIRE must run atomically, or a key could be left without a TTL.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter shares its windows across every replica through Redis. When
// Redis cannot answer it falls back to a process-local MemoryLimiter.
type RedisLimiter struct {
	client   redis.Scripter
	limit    int
	period   time.Duration
	prefix   string
	fallback *MemoryLimiter
	logger   *log.Logger
}

func NewRedis(client redis.Scripter, limit int, period time.Duration, l *log.Logger) *RedisLimiter {
	fallback := NewMemory(limit, period)
	return &RedisLimiter{
		client:   client,
		limit:    fallback.limit,
		period:   fallback.period,
		prefix:   "relay:rl:",
		fallback: fallback,
		logger:   l,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, ttl, err := l.incr(ctx, l.prefix+key)
	if err != nil {
		l.logger.Printf("Rate limiter falling back to memory: %v", err)
		return l.fallback.Allow(ctx, key)
	}
	if ttl <= 0 {
		ttl = l.period
	}
	return newDecision(count, l.limit, time.Now().UTC().Add(ttl))
}

func (l *RedisLimiter) incr(ctx context.Context, key string) (int, time.Duration, error) {
	res, err := fixedWindowScript.Run(ctx, l.client, []string{key}, l.period.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) < 2 {
		return 0, 0, fmt.Errorf("unexpected script reply: %v", res)
	}
	return int(res[0]), time.Duration(res[1]) * time.Millisecond, nil
}

// NewRedisClient connects to addr and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}
