package shopping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/mirror"
)

var errRemoteDown = errors.New("remote down")

// fakeRemote keeps lists in memory and can be told to fail the next writes.
type fakeRemote struct {
	mu      sync.Mutex
	lists   domain.Lists
	tags    map[string]string
	recipes map[string]domain.Recipe
	fail    bool
	patches int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		lists:   domain.NewLists(),
		tags:    map[string]string{},
		recipes: map[string]domain.Recipe{},
	}
}

func (f *fakeRemote) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeRemote) snapshot() domain.Lists {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists.Clone()
}

func (f *fakeRemote) InsertItemUnique(_ context.Context, list domain.ListName, item domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errRemoteDown
	}
	if _, _, ok := f.lists.FindByName(item.Name); ok {
		return domain.ErrDuplicateName
	}
	f.lists.Of(list)[item.ID] = item
	return nil
}

func (f *fakeRemote) ApplyListPatch(_ context.Context, patch domain.ListPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errRemoteDown
	}
	f.patches++
	patch.Apply(f.lists)
	return nil
}

func (f *fakeRemote) SaveTag(_ context.Context, tag domain.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errRemoteDown
	}
	if _, ok := f.tags[tag.Name]; ok {
		return fmt.Errorf("%w: %q", domain.ErrTagExists, tag.Name)
	}
	f.tags[tag.Name] = tag.Color
	return nil
}

func (f *fakeRemote) SaveRecipe(_ context.Context, r domain.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errRemoteDown
	}
	f.recipes[r.ID] = r
	return nil
}

func (f *fakeRemote) AppendRecipeNote(_ context.Context, id string, note domain.RecipeNote) (domain.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.Recipe{}, errRemoteDown
	}
	r, ok := f.recipes[id]
	if !ok {
		return domain.Recipe{}, domain.ErrNoRecipe
	}
	r.Notes = append(r.Notes, note)
	f.recipes[id] = r
	return r, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	ctrl   *Controller
	remote *fakeRemote
	mirror *mirror.Mirror
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	remote := newFakeRemote()
	m := mirror.New(domain.DefaultTags)
	ctrl := NewController("Marko", remote, m, logger.New("error", false), Options{
		UndoWindow:     5 * time.Second,
		EnterHighlight: time.Second,
		Now:            clock.Now,
	})
	return &fixture{ctrl: ctrl, remote: remote, mirror: m, clock: clock}
}

// sync plays the role of the snapshot syncer.
func (f *fixture) sync() {
	f.mirror.Lists.Replace(f.remote.snapshot())
}

func yes(domain.Item) bool { return true }

func TestAddItemValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.ctrl.AddItem(ctx, "Milk", "DM"); err != nil {
		t.Fatalf("seed AddItem: %v", err)
	}
	f.sync()

	tests := []struct {
		name    string
		item    string
		tag     string
		wantErr error
	}{
		{"empty name", "", "DM", domain.ErrEmptyName},
		{"whitespace name", "   ", "DM", domain.ErrEmptyName},
		{"no tag", "Bread", "", domain.ErrTagRequired},
		{"unknown tag", "Bread", "Konzum", domain.ErrUnknownTag},
		{"duplicate", "Milk", "DM", domain.ErrDuplicateName},
		{"duplicate other case", "  mILK ", "Lidl", domain.ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.remote.snapshot()
			_, err := f.ctrl.AddItem(ctx, tt.item, tt.tag)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddItem() error = %v, want %v", err, tt.wantErr)
			}
			after := f.remote.snapshot()
			if len(after.ToBuy) != len(before.ToBuy) || len(after.Have) != len(before.Have) {
				t.Fatal("rejected add changed the remote")
			}
			if have, toBuy := f.mirror.Lists.Count(); have != 0 || toBuy != 1 {
				t.Fatalf("mirror counts = %d/%d, want 0/1", have, toBuy)
			}
		})
	}
}

func TestAddItemMarksEntering(t *testing.T) {
	f := newFixture(t)
	item, err := f.ctrl.AddItem(context.Background(), "Milk", "DM")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got := f.ctrl.Entering(); len(got) != 1 || got[0] != item.ID {
		t.Fatalf("Entering() = %v", got)
	}
	f.clock.Advance(time.Second)
	if got := f.ctrl.Entering(); len(got) != 0 {
		t.Fatalf("Entering() after highlight = %v", got)
	}
	if _, _, ok := f.ctrl.PendingUndo(); ok {
		t.Fatal("add armed an undo entry")
	}
}

func TestRollbackOnRemoteFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("add", func(t *testing.T) {
		f := newFixture(t)
		f.remote.setFail(true)
		_, err := f.ctrl.AddItem(ctx, "Milk", "DM")
		if !domain.IsRemote(err) {
			t.Fatalf("error = %v, want remote error", err)
		}
		if have, toBuy := f.mirror.Lists.Count(); have+toBuy != 0 {
			t.Fatal("failed add left an item in the mirror")
		}
	})

	t.Run("move", func(t *testing.T) {
		f := newFixture(t)
		item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")
		f.remote.setFail(true)
		_, err := f.ctrl.MoveItem(ctx, item.ID, domain.ListToBuy, domain.ListHave)
		if !domain.IsRemote(err) {
			t.Fatalf("error = %v, want remote error", err)
		}
		list, got, ok := f.mirror.Lists.Locate(item.ID)
		if !ok || list != domain.ListToBuy || got != item {
			t.Fatalf("after rollback item is %q %+v", list, got)
		}
		if _, _, ok := f.ctrl.PendingUndo(); ok {
			t.Fatal("failed move armed undo")
		}
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(t)
		item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")
		f.remote.setFail(true)
		err := f.ctrl.DeleteItem(ctx, item.ID, domain.ListToBuy, yes)
		if !domain.IsRemote(err) {
			t.Fatalf("error = %v, want remote error", err)
		}
		if _, ok := f.mirror.Lists.Get(domain.ListToBuy, item.ID); !ok {
			t.Fatal("failed delete not rolled back")
		}
	})
}

func TestMoveItemErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")

	if _, err := f.ctrl.MoveItem(ctx, item.ID, domain.ListToBuy, domain.ListToBuy); !errors.Is(err, domain.ErrSameList) {
		t.Fatalf("same list error = %v", err)
	}
	if _, err := f.ctrl.MoveItem(ctx, item.ID, domain.ListHave, domain.ListToBuy); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("wrong source error = %v", err)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")

	var asked domain.Item
	err := f.ctrl.DeleteItem(ctx, item.ID, domain.ListToBuy, func(it domain.Item) bool {
		asked = it
		return false
	})
	if !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("error = %v, want ErrNotConfirmed", err)
	}
	if asked.Name != "Milk" {
		t.Fatalf("confirmer saw %+v", asked)
	}
	if err := f.ctrl.DeleteItem(ctx, item.ID, domain.ListToBuy, nil); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("nil confirmer error = %v", err)
	}
	if _, ok := f.remote.snapshot().ToBuy[item.ID]; !ok {
		t.Fatal("unconfirmed delete reached the remote")
	}
}

func TestMoveThenUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")
	f.sync()

	if _, err := f.ctrl.MoveItem(ctx, item.ID, domain.ListToBuy, domain.ListHave); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	pending, expires, ok := f.ctrl.PendingUndo()
	if !ok || pending.Kind != domain.UndoMove || !expires.Equal(f.clock.Now().Add(5*time.Second)) {
		t.Fatalf("PendingUndo() = %+v, %v, %v", pending, expires, ok)
	}

	entry, err := f.ctrl.PerformUndo(ctx)
	if err != nil || entry == nil {
		t.Fatalf("PerformUndo() = %v, %v", entry, err)
	}
	f.sync()

	list, got, ok := f.mirror.Lists.Locate(item.ID)
	if !ok || list != domain.ListToBuy || got != item {
		t.Fatalf("after undo: %q %+v %v", list, got, ok)
	}
	if _, ok := f.remote.snapshot().Have[item.ID]; ok {
		t.Fatal("undo left item in have")
	}
}

func TestDeleteThenUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")
	f.sync()

	if err := f.ctrl.DeleteItem(ctx, item.ID, domain.ListToBuy, yes); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	f.sync()
	if _, _, ok := f.mirror.Lists.Locate(item.ID); ok {
		t.Fatal("deleted item still mirrored")
	}

	if _, err := f.ctrl.PerformUndo(ctx); err != nil {
		t.Fatalf("PerformUndo: %v", err)
	}
	f.sync()
	got, ok := f.mirror.Lists.Get(domain.ListToBuy, item.ID)
	if !ok || got != item {
		t.Fatalf("restored %+v %v, want %+v", got, ok, item)
	}
}

func TestUndoAfterWindowIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")
	_, _ = f.ctrl.MoveItem(ctx, item.ID, domain.ListToBuy, domain.ListHave)

	f.clock.Advance(5 * time.Second)
	patches := f.remote.patches

	entry, err := f.ctrl.PerformUndo(ctx)
	if entry != nil || err != nil {
		t.Fatalf("PerformUndo() = %+v, %v, want nil, nil", entry, err)
	}
	if f.remote.patches != patches {
		t.Fatal("expired undo wrote to the remote")
	}
	if _, ok := f.remote.snapshot().Have[item.ID]; !ok {
		t.Fatal("expired undo reverted the move")
	}
}

func TestUndoFailureConsumesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, _ := f.ctrl.AddItem(ctx, "Milk", "DM")
	_, _ = f.ctrl.MoveItem(ctx, item.ID, domain.ListToBuy, domain.ListHave)

	f.remote.setFail(true)
	if _, err := f.ctrl.PerformUndo(ctx); !domain.IsRemote(err) {
		t.Fatalf("error = %v, want remote error", err)
	}
	f.remote.setFail(false)
	if entry, err := f.ctrl.PerformUndo(ctx); entry != nil || err != nil {
		t.Fatalf("second undo = %+v, %v", entry, err)
	}
}

func TestNewMutationReplacesUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	milk, _ := f.ctrl.AddItem(ctx, "Milk", "DM")
	bread, _ := f.ctrl.AddItem(ctx, "Bread", "Lidl")

	_, _ = f.ctrl.MoveItem(ctx, milk.ID, domain.ListToBuy, domain.ListHave)
	f.clock.Advance(4 * time.Second)
	_ = f.ctrl.DeleteItem(ctx, bread.ID, domain.ListToBuy, yes)
	f.clock.Advance(4 * time.Second)

	pending, _, ok := f.ctrl.PendingUndo()
	if !ok || pending.Kind != domain.UndoDelete || pending.Item.ID != bread.ID {
		t.Fatalf("PendingUndo() = %+v, %v", pending, ok)
	}
	if _, err := f.ctrl.PerformUndo(ctx); err != nil {
		t.Fatalf("PerformUndo: %v", err)
	}
	if entry, _ := f.ctrl.PerformUndo(ctx); entry != nil {
		t.Fatal("depth-1 buffer kept the replaced move")
	}
}

func TestMilkScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	milk, err := f.ctrl.AddItem(ctx, "Milk", "DM")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	f.sync()
	snap := f.mirror.Lists.Snapshot()
	if len(snap.ToBuy) != 1 || len(snap.Have) != 0 || snap.ToBuy[milk.ID].Tag != "DM" {
		t.Fatalf("after add: %+v", snap)
	}

	if _, err := f.ctrl.MoveItem(ctx, milk.ID, domain.ListToBuy, domain.ListHave); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	f.sync()
	snap = f.mirror.Lists.Snapshot()
	if len(snap.ToBuy) != 0 || snap.Have[milk.ID].Tag != "DM" {
		t.Fatalf("after move: %+v", snap)
	}

	if err := f.ctrl.DeleteItem(ctx, milk.ID, domain.ListHave, yes); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	f.sync()
	if _, _, ok := f.mirror.Lists.Locate(milk.ID); ok {
		t.Fatal("after delete: still present")
	}

	if _, err := f.ctrl.PerformUndo(ctx); err != nil {
		t.Fatalf("PerformUndo: %v", err)
	}
	f.sync()
	if list, _, ok := f.mirror.Lists.Locate(milk.ID); !ok || list != domain.ListHave {
		t.Fatalf("after undo: %q %v", list, ok)
	}
}

func TestAddTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		tag     string
		color   string
		wantErr error
	}{
		{"ok", "Konzum", "#ff0000", nil},
		{"empty name", " ", "#ff0000", domain.ErrEmptyTagName},
		{"empty color", "Idea", "", domain.ErrEmptyColor},
		{"default exists", "DM", "#ffffff", domain.ErrTagExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ctrl.AddTag(ctx, tt.tag, tt.color)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddTag() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if f.remote.tags["Konzum"] != "#ff0000" {
		t.Fatalf("remote tags = %v", f.remote.tags)
	}
	if _, ok := f.remote.tags["DM"]; ok {
		t.Fatal("rejected tag reached the remote")
	}
}

func TestAddTagUsableBeforeSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.AddTag(ctx, "Pijaca", "#22c55e"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	item, err := f.ctrl.AddItem(ctx, "Paprika", "Pijaca")
	if err != nil {
		t.Fatalf("AddItem with fresh tag: %v", err)
	}
	if item.Tag != "Pijaca" {
		t.Fatalf("item tag = %q", item.Tag)
	}
}

func TestAddTagRemoteDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// another session saved it first; this mirror has not seen it yet
	f.remote.tags["Pijaca"] = "#000000"

	_, err := f.ctrl.AddTag(ctx, "Pijaca", "#22c55e")
	if !errors.Is(err, domain.ErrTagExists) {
		t.Fatalf("AddTag() error = %v, want %v", err, domain.ErrTagExists)
	}
	if f.remote.tags["Pijaca"] != "#000000" {
		t.Fatal("duplicate overwrote the first color")
	}
	if f.mirror.Tags.Has("Pijaca") {
		t.Fatal("rejected tag reached the mirror")
	}
}

func TestRecipes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.AddRecipe(ctx, "  "); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("empty title error = %v", err)
	}
	r, err := f.ctrl.AddRecipe(ctx, "Sarma")
	if err != nil {
		t.Fatalf("AddRecipe: %v", err)
	}
	if _, err := f.ctrl.AnnotateRecipe(ctx, r.ID, ""); !errors.Is(err, domain.ErrEmptyNote) {
		t.Fatalf("empty note error = %v", err)
	}
	got, err := f.ctrl.AnnotateRecipe(ctx, r.ID, "more pepper")
	if err != nil {
		t.Fatalf("AnnotateRecipe: %v", err)
	}
	if len(got.Notes) != 1 || got.Notes[0].Author != "Marko" {
		t.Fatalf("notes = %+v", got.Notes)
	}
	if _, err := f.ctrl.AnnotateRecipe(ctx, "nope", "x"); !errors.Is(err, domain.ErrNoRecipe) {
		t.Fatalf("missing recipe error = %v", err)
	}
}
