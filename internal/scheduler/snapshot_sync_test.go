package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/mirror"
	redisstore "github.com/MrSnakeDoc/kupovina/internal/store/redis"
)

func newTestStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewStore(client, "test"), mr
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSnapshotSyncerInitialLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	milk := domain.Item{ID: "m1", Name: "Milk", Tag: "DM"}
	if err := store.ApplyListPatch(ctx, domain.ListPatch{}.Set(domain.ListToBuy, milk)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.SaveTag(ctx, domain.Tag{Name: "Konzum", Color: "#ff0000"}); err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	m := mirror.New(domain.DefaultTags)
	s := NewSnapshotSyncer(store, m, logger.New("error", false))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if _, ok := m.Lists.Get(domain.ListToBuy, "m1"); !ok {
		t.Fatal("initial snapshot missing item")
	}
	if !m.Tags.Has("Konzum") || !m.Tags.Has("DM") {
		t.Fatal("tags not overlaid on defaults")
	}
}

func TestSnapshotSyncerFollowsChanges(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	m := mirror.New(domain.DefaultTags)
	s := NewSnapshotSyncer(store, m, logger.New("error", false))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	milk := domain.Item{ID: "m1", Name: "Milk", Tag: "DM"}
	if err := store.ApplyListPatch(ctx, domain.ListPatch{}.Set(domain.ListToBuy, milk)); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, "item in toBuy", func() bool {
		_, ok := m.Lists.Get(domain.ListToBuy, "m1")
		return ok
	})

	move := domain.ListPatch{}.Set(domain.ListHave, milk).Delete(domain.ListToBuy, "m1")
	if err := store.ApplyListPatch(ctx, move); err != nil {
		t.Fatalf("move: %v", err)
	}
	waitFor(t, "item moved to have", func() bool {
		list, _, ok := m.Lists.Locate("m1")
		return ok && list == domain.ListHave
	})
	if _, ok := m.Lists.Get(domain.ListToBuy, "m1"); ok {
		t.Fatal("item in both lists")
	}

	if err := store.SavePresence(ctx, domain.PresenceRecord{Username: "Dragana", Online: true}); err != nil {
		t.Fatalf("presence: %v", err)
	}
	waitFor(t, "presence", func() bool {
		return len(m.Presence.OthersOnline("Marko")) == 1
	})
}

func TestSnapshotSyncerFailureKeepsMirror(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	milk := domain.Item{ID: "m1", Name: "Milk"}
	_ = store.ApplyListPatch(ctx, domain.ListPatch{}.Set(domain.ListToBuy, milk))

	m := mirror.New(nil)
	s := NewSnapshotSyncer(store, m, logger.New("error", false))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	mr.SetError("LOADING redis is loading")

	err := s.Reload(ctx, redisstore.RootLists)
	if err == nil {
		t.Fatal("Reload succeeded against a closed server")
	}
	s.fail(redisstore.RootLists, err)

	if msg, _ := m.Error(); msg == "" {
		t.Fatal("banner not set")
	}
	if _, ok := m.Lists.Get(domain.ListToBuy, "m1"); !ok {
		t.Fatal("mirror lost its last known value")
	}
}

func TestSnapshotSyncerStopTwice(t *testing.T) {
	store, _ := newTestStore(t)
	s := NewSnapshotSyncer(store, mirror.New(nil), logger.New("error", false))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	s.Stop()
}
