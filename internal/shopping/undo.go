package shopping

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// UndoBuffer holds the most recent undo-eligible mutations.
//
// Entries stay pending for one window after the most recent Arm; once the
// window passes they are all dropped. When the buffer is full the oldest
// entry is discarded.
type UndoBuffer struct {
	mu      sync.Mutex
	depth   int
	window  time.Duration
	entries []domain.UndoEntry
	armedAt time.Time
	now     func() time.Time
}

// NewUndoBuffer returns a buffer keeping at most depth entries for window.
// depth below 1 is treated as 1; now defaults to time.Now.
func NewUndoBuffer(depth int, window time.Duration, now func() time.Time) *UndoBuffer {
	if depth < 1 {
		depth = 1
	}
	if now == nil {
		now = time.Now
	}
	return &UndoBuffer{depth: depth, window: window, now: now}
}

// Arm pushes e and restarts the window.
func (b *UndoBuffer) Arm(e domain.UndoEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pruneLocked()
	now := b.now()
	e.ArmedAt = now
	b.entries = append(b.entries, e)
	if over := len(b.entries) - b.depth; over > 0 {
		b.entries = append([]domain.UndoEntry(nil), b.entries[over:]...)
	}
	b.armedAt = now
}

// Pop removes and returns the newest pending entry.
func (b *UndoBuffer) Pop() (domain.UndoEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pruneLocked()
	if len(b.entries) == 0 {
		return domain.UndoEntry{}, false
	}
	last := len(b.entries) - 1
	e := b.entries[last]
	b.entries = b.entries[:last]
	return e, true
}

// Peek returns the newest pending entry and when it expires.
func (b *UndoBuffer) Peek() (domain.UndoEntry, time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pruneLocked()
	if len(b.entries) == 0 {
		return domain.UndoEntry{}, time.Time{}, false
	}
	return b.entries[len(b.entries)-1], b.armedAt.Add(b.window), true
}

// Len returns the number of pending entries.
func (b *UndoBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked()
	return len(b.entries)
}

// Clear drops everything.
func (b *UndoBuffer) Clear() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}

func (b *UndoBuffer) pruneLocked() {
	if len(b.entries) > 0 && !b.now().Before(b.armedAt.Add(b.window)) {
		b.entries = nil
	}
}
