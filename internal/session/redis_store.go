package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/student-console/pkg/errors"
)

const keyPrefix = "console:session:"

// RedisStore keeps snapshots as JSON strings with a TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a redis backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(id string) string { return keyPrefix + id }

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key(id), err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &snap, nil
}

// Save implements Store. Every save refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, id string, snapshot Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}
	if err := s.client.Set(ctx, key(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key(id), err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key(id), err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
