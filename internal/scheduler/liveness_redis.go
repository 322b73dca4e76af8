package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const heartbeatKey = "lookout:scheduler:heartbeat"

// RedisSignal stores the heartbeat in Redis so liveness survives process
// restarts and is visible to external health checks.
type RedisSignal struct {
	client *redis.Client
}

// NewRedisSignal connects to Redis and verifies the connection.
func NewRedisSignal(addr string) (*RedisSignal, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisSignal{client: client}, nil
}

func (r *RedisSignal) Record(ctx context.Context, at time.Time) error {
	// The key expires well after any sane freshness window; Fresh compares
	// the stored timestamp, not key existence.
	return r.client.Set(ctx, heartbeatKey, at.UTC().Format(time.RFC3339Nano), 24*time.Hour).Err()
}

func (r *RedisSignal) Fresh(ctx context.Context, ttl time.Duration) (bool, error) {
	val, err := r.client.Get(ctx, heartbeatKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	last, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return false, fmt.Errorf("parse heartbeat timestamp: %w", err)
	}

	return time.Since(last) <= ttl, nil
}
