package ratelimit

import (
	"context"
	"fmt"
	"time"

	"caseflow/internal/platform/redis"
)

// RedisStore implements Store with a fixed window per key. Coarser than the
// in-memory sliding window but shared across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	bucket := fmt.Sprintf("caseflow:ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	count, err := s.client.Incr(ctx, bucket).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, bucket, window).Err(); err != nil {
			return nil, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   int(count) <= limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(window),
		Limit:     limit,
	}, nil
}
