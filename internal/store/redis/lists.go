package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-lock retries for WATCH transactions.
const maxTxRetries = 5

// GetLists reads both lists in one MULTI/EXEC, so the snapshot never
// catches a move half applied.
func (s *Store) GetLists(ctx context.Context) (domain.Lists, error) {
	cmds := make(map[domain.ListName]*redis.MapStringStringCmd, len(domain.AllLists))
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range domain.AllLists {
			cmds[name] = pipe.HGetAll(ctx, s.ListKey(name))
		}
		return nil
	})
	if err != nil {
		return domain.Lists{}, fmt.Errorf("failed to read lists: %w", err)
	}

	lists := domain.NewLists()
	for name, cmd := range cmds {
		m := lists.Of(name)
		for id, data := range cmd.Val() {
			var item domain.Item
			if err := json.Unmarshal([]byte(data), &item); err != nil {
				// Skip entries that can't be decoded
				continue
			}
			item.ID = id
			m[id] = item
		}
	}
	return lists, nil
}

// ApplyListPatch writes a set-or-delete patch across both lists in one
// MULTI/EXEC, so a move never leaves the item in both lists or in neither.
func (s *Store) ApplyListPatch(ctx context.Context, patch domain.ListPatch) error {
	if len(patch) == 0 {
		return nil
	}

	// Marshal before opening the transaction so a bad item aborts cleanly.
	type write struct {
		key, id string
		data    []byte
	}
	var sets, dels []write
	for list, entries := range patch {
		key := s.ListKey(list)
		for id, item := range entries {
			if item == nil {
				dels = append(dels, write{key: key, id: id})
				continue
			}
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("failed to marshal item %s: %w", id, err)
			}
			sets = append(sets, write{key: key, id: id, data: data})
		}
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range sets {
			pipe.HSet(ctx, w.key, w.id, w.data)
		}
		for _, w := range dels {
			pipe.HDel(ctx, w.key, w.id)
		}
		s.publish(ctx, pipe, RootLists)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply list patch: %w", err)
	}
	return nil
}

// InsertItemUnique adds item under list unless an item with the same name
// (case-insensitive) already exists in either list. The check and the
// write run under WATCH, so two sessions racing on the same name cannot
// both succeed.
func (s *Store) InsertItemUnique(ctx context.Context, list domain.ListName, item domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	keys := make([]string, 0, len(domain.AllLists))
	for _, name := range domain.AllLists {
		keys = append(keys, s.ListKey(name))
	}

	txf := func(tx *redis.Tx) error {
		for _, key := range keys {
			raw, err := tx.HVals(ctx, key).Result()
			if err != nil {
				return err
			}
			for _, v := range raw {
				var existing domain.Item
				if err := json.Unmarshal([]byte(v), &existing); err != nil {
					continue
				}
				if domain.SameName(existing.Name, item.Name) {
					return domain.ErrDuplicateName
				}
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ListKey(list), item.ID, data)
			s.publish(ctx, pipe, RootLists)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, domain.ErrDuplicateName) {
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to insert item: %w", err)
}
