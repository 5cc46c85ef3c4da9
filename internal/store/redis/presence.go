package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SavePresence writes one user's presence record.
func (s *Store) SavePresence(ctx context.Context, rec domain.PresenceRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.PresenceKey(), rec.Username, data)
		s.publish(ctx, pipe, RootPresence)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save presence: %w", err)
	}
	return nil
}

// GetPresence returns every known presence record keyed by username.
func (s *Store) GetPresence(ctx context.Context) (map[string]domain.PresenceRecord, error) {
	raw, err := s.client.HGetAll(ctx, s.PresenceKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}

	records := make(map[string]domain.PresenceRecord, len(raw))
	for username, data := range raw {
		var rec domain.PresenceRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		rec.Username = username
		records[username] = rec
	}
	return records, nil
}
