package mirror

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// Lists mirrors the have and toBuy lists.
type Lists struct {
	mu       sync.RWMutex
	lists    domain.Lists
	lastSync time.Time // time of the last remote snapshot
	changed  func()
}

func newLists(changed func()) *Lists {
	return &Lists{lists: domain.NewLists(), changed: changed}
}

// Replace swaps in a remote snapshot. Both lists are replaced together;
// nothing from the previous state survives.
func (l *Lists) Replace(lists domain.Lists) {
	l.mu.Lock()
	l.lists = lists.Clone()
	l.lastSync = time.Now()
	l.mu.Unlock()
	l.changed()
}

// Snapshot returns a copy of both lists.
func (l *Lists) Snapshot() domain.Lists {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.Clone()
}

// Locate returns the list holding id and the item.
func (l *Lists) Locate(id string) (domain.ListName, domain.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.Locate(id)
}

// Get returns the item id from list.
func (l *Lists) Get(list domain.ListName, id string) (domain.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, ok := l.lists.Of(list)[id]
	return it, ok
}

// FindByName looks for a case-insensitive name match in either list.
func (l *Lists) FindByName(name string) (domain.ListName, domain.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.FindByName(name)
}

// Put inserts or overwrites item under list.
func (l *Lists) Put(list domain.ListName, item domain.Item) {
	l.mu.Lock()
	l.lists.Of(list)[item.ID] = item
	l.mu.Unlock()
	l.changed()
}

// Remove deletes id from list and returns what was there.
func (l *Lists) Remove(list domain.ListName, id string) (domain.Item, bool) {
	l.mu.Lock()
	m := l.lists.Of(list)
	it, ok := m[id]
	delete(m, id)
	l.mu.Unlock()
	if ok {
		l.changed()
	}
	return it, ok
}

// Move transfers id from one list to the other, keeping the payload.
func (l *Lists) Move(id string, from, to domain.ListName) (domain.Item, bool) {
	l.mu.Lock()
	src := l.lists.Of(from)
	it, ok := src[id]
	if ok {
		delete(src, id)
		l.lists.Of(to)[id] = it
	}
	l.mu.Unlock()
	if ok {
		l.changed()
	}
	return it, ok
}

// Count returns the number of items per list.
func (l *Lists) Count() (have, toBuy int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.lists.Have), len(l.lists.ToBuy)
}

// LastSync returns when the last remote snapshot was applied.
func (l *Lists) LastSync() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSync
}
