package shopping

import (
	"sort"
	"sync"
	"time"
)

// Highlights tracks ids marked as "entering" for a fixed duration.
type Highlights struct {
	mu      sync.Mutex
	d       time.Duration
	until   map[string]time.Time
	now     func() time.Time
	onClear func()
}

// NewHighlights returns a tracker marking ids for d. onClear, if set, is
// called from a timer goroutine once a mark has lapsed.
func NewHighlights(d time.Duration, now func() time.Time, onClear func()) *Highlights {
	if now == nil {
		now = time.Now
	}
	return &Highlights{d: d, until: map[string]time.Time{}, now: now, onClear: onClear}
}

// Mark highlights id, restarting its duration if already marked.
func (h *Highlights) Mark(id string) {
	if h.d <= 0 {
		return
	}
	h.mu.Lock()
	h.until[id] = h.now().Add(h.d)
	h.mu.Unlock()

	time.AfterFunc(h.d, func() {
		h.mu.Lock()
		if t, ok := h.until[id]; ok && !h.now().Before(t) {
			delete(h.until, id)
		}
		h.mu.Unlock()
		if h.onClear != nil {
			h.onClear()
		}
	})
}

// Active returns the ids still highlighted, sorted.
func (h *Highlights) Active() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	ids := make([]string, 0, len(h.until))
	for id, t := range h.until {
		if !now.Before(t) {
			delete(h.until, id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
