// Package mirror holds a session's local copy of the remote documents.
//
// Each part is replaced wholesale when a remote snapshot arrives; between
// snapshots the mutation controller may apply optimistic changes to the
// lists. Every change is announced to watchers (the live view stream).
package mirror

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// Mirror groups the mirrored documents of one session.
type Mirror struct {
	Lists    *Lists
	Tags     *Tags
	Presence *Presence
	Recipes  *Recipes

	notifier *Notifier

	mu        sync.RWMutex
	lastErr   string
	lastErrAt time.Time
}

// New creates an empty mirror. defaults is the tag palette laid under
// remote tags.
func New(defaults []domain.Tag) *Mirror {
	n := NewNotifier()
	return &Mirror{
		Lists:    newLists(n.Notify),
		Tags:     newTags(defaults, n.Notify),
		Presence: newPresence(n.Notify),
		Recipes:  newRecipes(n.Notify),
		notifier: n,
	}
}

// Watch returns a channel signalled after every change, and a cancel func.
func (m *Mirror) Watch() (<-chan struct{}, func()) {
	return m.notifier.Subscribe()
}

// SetError records a non-fatal sync error for the banner. The mirrored
// data is left as it was.
func (m *Mirror) SetError(err error, at time.Time) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.lastErr = err.Error()
	m.lastErrAt = at
	m.mu.Unlock()
	m.notifier.Notify()
}

// Error returns the current banner error, if any.
func (m *Mirror) Error() (string, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr, m.lastErrAt
}

// DismissError clears the banner.
func (m *Mirror) DismissError() {
	m.mu.Lock()
	m.lastErr = ""
	m.lastErrAt = time.Time{}
	m.mu.Unlock()
	m.notifier.Notify()
}

// Notify signals watchers without changing anything, for state kept
// outside the mirror (undo, highlights) that the view depends on.
func (m *Mirror) Notify() {
	m.notifier.Notify()
}
