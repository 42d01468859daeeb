package counter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tckz/view-counter/internal/config"
)

const redisField = "count"

var _ Counter = (*RedisCounter)(nil)

type RedisCounter struct {
	key    string
	client redis.UniversalClient
}

func NewRedisCounter(cfg config.Config) *RedisCounter {
	cl := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.RedisAddr},
		DialTimeout:  time.Second * 2,
		ReadTimeout:  time.Second * 2,
		WriteTimeout: time.Second * 2,
		PoolSize:     200,
		PoolTimeout:  time.Second * 5,
	})
	return NewRedisCounterWithClient(cfg.TableName, cl)
}

func NewRedisCounterWithClient(table string, client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{key: recordKey(table), client: client}
}

func (c *RedisCounter) Get(ctx context.Context) (int64, error) {
	n, err := c.client.HGet(ctx, c.key, redisField).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, storeError("redis", "Get", err)
}

// Up relies on HINCRBY treating a missing field as 0.
func (c *RedisCounter) Up(ctx context.Context) (int64, error) {
	n, err := c.client.HIncrBy(ctx, c.key, redisField, 1).Result()
	return n, storeError("redis", "Up", err)
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}
