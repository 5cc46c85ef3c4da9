package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/shopping"
	redisstore "github.com/MrSnakeDoc/kupovina/internal/store/redis"
)

func newTestManager(t *testing.T, cfg Config) (*Manager, *redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := redisstore.NewStore(client, "test")
	m := NewManager(store, logger.New("error", false), cfg)
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
		_ = client.Close()
	})
	return m, store, mr
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

func startSession(t *testing.T, m *Manager, user string) *Session {
	t.Helper()
	s, err := m.Start(context.Background(), user)
	if err != nil {
		t.Fatalf("Start(%s): %v", user, err)
	}
	return s
}

func TestTwoSessionsConverge(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})
	ctx := context.Background()
	a := startSession(t, m, "Marko")
	b := startSession(t, m, "Dragana")

	milk, err := a.Controller().AddItem(ctx, "Milk", "DM")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	waitFor(t, "B sees Milk in toBuy", func() bool {
		_, ok := b.Mirror().Lists.Get(domain.ListToBuy, milk.ID)
		return ok
	})

	if _, err := a.Controller().MoveItem(ctx, milk.ID, domain.ListToBuy, domain.ListHave); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	waitFor(t, "B sees Milk in have", func() bool {
		list, _, ok := b.Mirror().Lists.Locate(milk.ID)
		return ok && list == domain.ListHave
	})
	if _, ok := b.Mirror().Lists.Get(domain.ListToBuy, milk.ID); ok {
		t.Fatal("B mirror holds Milk in both lists")
	}

	waitFor(t, "presence", func() bool {
		others := b.Mirror().Presence.OthersOnline("Dragana")
		return len(others) == 1 && others[0] == "Marko"
	})
}

func TestDuplicateRejectedByRemote(t *testing.T) {
	m, store, mr := newTestManager(t, Config{})
	ctx := context.Background()
	s := startSession(t, m, "Marko")

	// Written without a change notification, so the mirror never sees it.
	mr.HSet(store.ListKey(domain.ListHave), "x1", `{"id":"x1","name":"Milk","tag":"DM"}`)

	_, err := s.Controller().AddItem(ctx, "milk", "DM")
	if !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("AddItem() error = %v, want ErrDuplicateName", err)
	}
	if _, _, ok := s.Mirror().Lists.FindByName("milk"); ok {
		t.Fatal("rejected item left in the mirror")
	}
}

func TestMilkScenarioEndToEnd(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})
	ctx := context.Background()
	s := startSession(t, m, "Marko")
	ctrl := s.Controller()

	milk, err := ctrl.AddItem(ctx, "Milk", "DM")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	v := s.View(time.Now())
	if len(v.ToBuy) != 1 || v.ToBuy[0].Tag.Name != "DM" || v.ToBuy[0].Items[0].ID != milk.ID {
		t.Fatalf("toBuy groups = %+v", v.ToBuy)
	}
	if len(v.Entering) != 1 || v.Entering[0] != milk.ID {
		t.Fatalf("entering = %v", v.Entering)
	}

	if _, err := ctrl.MoveItem(ctx, milk.ID, domain.ListToBuy, domain.ListHave); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	v = s.View(time.Now())
	if v.Undo == nil || v.Undo.Kind != domain.UndoMove || v.Undo.ItemName != "Milk" {
		t.Fatalf("undo = %+v", v.Undo)
	}
	waitFor(t, "Milk only in have with its tag", func() bool {
		v := s.View(time.Now())
		return len(v.Have) == 1 && v.Have[0].Items[0].Tag == "DM" && len(v.ToBuy) == 0
	})

	if err := ctrl.DeleteItem(ctx, milk.ID, domain.ListHave, func(domain.Item) bool { return true }); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	waitFor(t, "Milk gone", func() bool {
		_, _, ok := s.Mirror().Lists.Locate(milk.ID)
		return !ok
	})

	if _, err := ctrl.PerformUndo(ctx); err != nil {
		t.Fatalf("PerformUndo: %v", err)
	}
	waitFor(t, "Milk back in have", func() bool {
		list, got, ok := s.Mirror().Lists.Locate(milk.ID)
		return ok && list == domain.ListHave && got.Tag == "DM"
	})
}

func TestEndMarksOffline(t *testing.T) {
	m, store, _ := newTestManager(t, Config{})
	ctx := context.Background()
	a := startSession(t, m, "Marko")
	b := startSession(t, m, "Dragana")

	waitFor(t, "A online for B", func() bool {
		return len(b.Mirror().Presence.OthersOnline("Dragana")) == 1
	})

	if err := m.End(ctx, a.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := m.End(ctx, a.ID); !IsNotFound(err) {
		t.Fatalf("second End error = %v", err)
	}

	records, err := store.GetPresence(ctx)
	if err != nil {
		t.Fatalf("GetPresence: %v", err)
	}
	if records["Marko"].Online {
		t.Fatal("Marko still online after End")
	}
	waitFor(t, "B sees A offline", func() bool {
		return len(b.Mirror().Presence.OthersOnline("Dragana")) == 0
	})
	if _, ok := m.Get(a.ID); ok {
		t.Fatal("ended session still registered")
	}
}

func TestEndKeepsUserOnlineWhileAnotherSessionLives(t *testing.T) {
	m, store, _ := newTestManager(t, Config{})
	ctx := context.Background()
	phone := startSession(t, m, "Marko")
	laptop := startSession(t, m, "Marko")

	if err := m.End(ctx, phone.ID); err != nil {
		t.Fatalf("End phone: %v", err)
	}
	records, err := store.GetPresence(ctx)
	if err != nil {
		t.Fatalf("GetPresence: %v", err)
	}
	if !records["Marko"].Online {
		t.Fatal("Marko marked offline while the laptop session is live")
	}

	if err := m.End(ctx, laptop.ID); err != nil {
		t.Fatalf("End laptop: %v", err)
	}
	records, err = store.GetPresence(ctx)
	if err != nil {
		t.Fatalf("GetPresence: %v", err)
	}
	if records["Marko"].Online {
		t.Fatal("Marko still online after the last session ended")
	}
}

func TestReap(t *testing.T) {
	m, _, _ := newTestManager(t, Config{TTL: time.Hour})
	ctx := context.Background()
	a := startSession(t, m, "Marko")
	b := startSession(t, m, "Dragana")

	later := time.Now().Add(90 * time.Minute)
	b.touch(later.Add(-time.Minute))

	if n := m.Reap(ctx, later); n != 1 {
		t.Fatalf("Reap() = %d, want 1", n)
	}
	if _, ok := m.Get(a.ID); ok {
		t.Fatal("idle session survived")
	}
	if _, ok := m.Get(b.ID); !ok {
		t.Fatal("active session reaped")
	}
	if got := m.Users(); len(got) != 1 || got[0] != "Dragana" {
		t.Fatalf("Users() = %v", got)
	}
}

func TestViewBannerAndUndoExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m, _, _ := newTestManager(t, Config{Controller: shopping.Options{Now: clock}})
	ctx := context.Background()
	s := startSession(t, m, "Marko")

	milk, _ := s.Controller().AddItem(ctx, "Milk", "DM")
	if _, err := s.Controller().MoveItem(ctx, milk.ID, domain.ListToBuy, domain.ListHave); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	if v := s.View(now); v.Undo == nil || !v.Undo.ExpiresAt.Equal(now.Add(shopping.DefaultUndoWindow)) {
		t.Fatalf("undo = %+v", v.Undo)
	}
	if v := s.View(now.Add(shopping.DefaultUndoWindow)); v.Undo != nil {
		t.Fatalf("expired undo shown: %+v", v.Undo)
	}

	s.Mirror().SetError(errors.New("permission denied"), now)
	if v := s.View(now); v.Banner == nil || v.Banner.Message != "permission denied" {
		t.Fatalf("banner = %+v", v.Banner)
	}
	s.DismissError()
	if v := s.View(now); v.Banner != nil {
		t.Fatalf("banner after dismiss = %+v", v.Banner)
	}
}
