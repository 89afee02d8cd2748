package quota

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisCounter implements a fixed-window usage counter backed by Redis so
// multiple instances share daily quota state.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisCounter constructs a RedisCounter.
func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: strings.TrimSpace(prefix)}
}

// Usage returns the count recorded for the current UTC day.
func (c *RedisCounter) Usage(ctx context.Context, userID uint64, feature string, now time.Time) (int, error) {
	if c == nil || c.client == nil {
		return 0, errors.New("quota redis: not initialized")
	}
	val, errGet := c.client.Get(ctx, c.buildKey(userID, feature, now)).Int()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return 0, nil
		}
		return 0, errGet
	}
	return val, nil
}

// Increment records one use for the current UTC day. The key expires shortly
// after the day window closes.
func (c *RedisCounter) Increment(ctx context.Context, userID uint64, feature string, now time.Time) (int, error) {
	if c == nil || c.client == nil {
		return 0, errors.New("quota redis: not initialized")
	}
	res, errEval := redisIncrScript.Run(ctx, c.client,
		[]string{c.buildKey(userID, feature, now)},
		secondsUntilNextDay(now)).Result()
	if errEval != nil {
		return 0, errEval
	}
	count, ok := res.(int64)
	if !ok {
		return 0, errors.New("quota redis: unexpected response type")
	}
	return int(count), nil
}

func (c *RedisCounter) buildKey(userID uint64, feature string, now time.Time) string {
	key := dayKey(userID, feature, now)
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}
