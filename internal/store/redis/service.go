package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is the remote document store. Every document lives in a Redis
// hash; every write publishes the written root on the changes channel in
// the same transaction so subscribers never miss a write they can see.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a new Redis store. An empty prefix selects DefaultKeyPrefix.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// publish queues a change notification for root on pipe.
func (s *Store) publish(ctx context.Context, pipe redis.Pipeliner, root Root) {
	pipe.Publish(ctx, s.ChangesChannel(), string(root))
}
