package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps an owner's Idempotency-Key to the task it created.
// Key format: idempotency:tasks:<owner_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Lookup returns the task ID remembered for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, idempotencyKey(ownerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember records taskID under key, replacing any entry left by a deleted task.
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID, key, taskID string) error {
	if err := s.client.Set(ctx, idempotencyKey(ownerID, key), taskID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func idempotencyKey(ownerID, key string) string {
	return fmt.Sprintf("idempotency:tasks:%s:%s", ownerID, key)
}
