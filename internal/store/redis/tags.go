package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/redis/go-redis/v9"
)

// GetTags returns the user-added tags, sorted by name. The default palette
// is not stored remotely.
func (s *Store) GetTags(ctx context.Context) ([]domain.Tag, error) {
	raw, err := s.client.HGetAll(ctx, s.TagsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	tags := make([]domain.Tag, 0, len(raw))
	for name, color := range raw {
		tags = append(tags, domain.Tag{Name: name, Color: color})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// SaveTag registers a tag unless one with the same name is already
// stored. The existence check and the write run under WATCH, so two
// sessions adding the same name cannot both succeed.
func (s *Store) SaveTag(ctx context.Context, tag domain.Tag) error {
	key := s.TagsKey()
	txf := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, key, tag.Name).Result()
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q", domain.ErrTagExists, tag.Name)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, tag.Name, tag.Color)
			s.publish(ctx, pipe, RootTags)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, domain.ErrTagExists) {
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to save tag: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to save tag: %w", err)
}
