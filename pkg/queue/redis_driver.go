package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisQueueKey = "vastra:queue:default"

// RedisDriver persists jobs in a Redis list so they survive restarts
// and can be shared across processes.
type RedisDriver struct {
	client *redis.Client
}

// NewRedisDriver wraps an already-connected Redis client.
func NewRedisDriver(client *redis.Client) *RedisDriver {
	return &RedisDriver{client: client}
}

func (d *RedisDriver) Push(payload []byte) error {
	if err := d.client.RPush(context.Background(), redisQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// Pop blocks up to 2 seconds waiting for a job. A nil payload with a
// nil error means the wait timed out and the caller should loop.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.client.BLPop(ctx, 2*time.Second, redisQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	// BLPop returns [key, value]
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}
