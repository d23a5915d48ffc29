package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps pending settlements as JSON values without expiry: a
// recovery record for captured money must not silently age out.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (PendingSettlement, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingSettlement{}, ErrNoPending
	}
	if err != nil {
		return PendingSettlement{}, fmt.Errorf("redis get failed: %w", err)
	}

	var p PendingSettlement
	if err := json.Unmarshal(data, &p); err != nil {
		return PendingSettlement{}, fmt.Errorf("unmarshal pending settlement failed: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, p PendingSettlement) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending settlement failed: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func redisKey(key string) string {
	return fmt.Sprintf("pending-settlement:%s", key)
}
