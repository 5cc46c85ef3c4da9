package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/metrics"
	"github.com/MrSnakeDoc/kupovina/internal/mirror"
	redisstore "github.com/MrSnakeDoc/kupovina/internal/store/redis"
	"github.com/MrSnakeDoc/kupovina/internal/utils"
)

// SnapshotSyncer keeps a session mirror in step with the remote store.
// Every change notification triggers a full reload of the announced root,
// which then replaces the matching part of the mirror.
type SnapshotSyncer struct {
	store  *redisstore.Store
	mirror *mirror.Mirror
	logger logger.Logger
	now    func() time.Time

	feed     *redisstore.ChangeFeed
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSnapshotSyncer creates a syncer feeding m from store.
func NewSnapshotSyncer(store *redisstore.Store, m *mirror.Mirror, log logger.Logger) *SnapshotSyncer {
	return &SnapshotSyncer{
		store:  store,
		mirror: m,
		logger: log,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start subscribes to the change feed, loads every root once, and then
// follows changes until Stop or ctx is done. The subscription is taken
// before the initial load so no write can fall between the two.
func (s *SnapshotSyncer) Start(ctx context.Context) error {
	feed, err := s.store.SubscribeChanges(ctx)
	if err != nil {
		return err
	}
	s.feed = feed

	if err := s.Sync(ctx); err != nil {
		utils.Close(feed)
		return fmt.Errorf("initial snapshot failed: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case root, ok := <-feed.C():
				if !ok {
					return
				}
				if err := s.Reload(ctx, root); err != nil {
					s.fail(root, err)
				}
			case err := <-feed.Errors():
				s.logger.Warn("malformed change notification", logger.Error(err))
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop unsubscribes and waits for the loop to exit. Safe to call twice.
func (s *SnapshotSyncer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.feed != nil {
			utils.MustClose(s.feed, s.logger)
		}
	})
	s.wg.Wait()
}

// Sync loads every root.
func (s *SnapshotSyncer) Sync(ctx context.Context) error {
	var errs []error
	for _, root := range redisstore.AllRoots {
		if err := s.Reload(ctx, root); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload reads one root from the store and replaces it in the mirror. On
// failure the mirror keeps its previous value.
func (s *SnapshotSyncer) Reload(ctx context.Context, root redisstore.Root) error {
	switch root {
	case redisstore.RootLists:
		lists, err := s.store.GetLists(ctx)
		if err != nil {
			return err
		}
		s.mirror.Lists.Replace(lists)
	case redisstore.RootTags:
		tags, err := s.store.GetTags(ctx)
		if err != nil {
			return err
		}
		s.mirror.Tags.Replace(tags)
	case redisstore.RootPresence:
		records, err := s.store.GetPresence(ctx)
		if err != nil {
			return err
		}
		s.mirror.Presence.Replace(records)
	case redisstore.RootRecipes:
		recipes, err := s.store.GetRecipes(ctx)
		if err != nil {
			return err
		}
		s.mirror.Recipes.Replace(recipes)
	default:
		return fmt.Errorf("unknown root %q", root)
	}

	metrics.Snapshots.WithLabelValues(string(root)).Inc()
	return nil
}

func (s *SnapshotSyncer) fail(root redisstore.Root, err error) {
	metrics.SyncErrors.WithLabelValues(string(root)).Inc()
	s.logger.Warn("failed to reload snapshot",
		logger.String("root", string(root)),
		logger.Error(err))
	s.mirror.SetError(fmt.Errorf("sync %s: %w", root, err), s.now())
}
