package mirror

import (
	"sort"
	"sync"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// Tags is the tag registry: the default palette overlaid by remote tags.
type Tags struct {
	mu       sync.RWMutex
	defaults []domain.Tag
	remote   map[string]string
	pending  map[string]string // saved here, not yet seen in a Replace
	changed  func()
}

func newTags(defaults []domain.Tag, changed func()) *Tags {
	d := make([]domain.Tag, len(defaults))
	copy(d, defaults)
	return &Tags{defaults: d, remote: map[string]string{}, pending: map[string]string{}, changed: changed}
}

// Replace swaps in the remote tags. Tags added through Put stay until a
// snapshot contains them.
func (t *Tags) Replace(remote []domain.Tag) {
	m := make(map[string]string, len(remote))
	for _, tag := range remote {
		m[tag.Name] = tag.Color
	}
	t.mu.Lock()
	for name, color := range t.pending {
		if _, ok := m[name]; ok {
			delete(t.pending, name)
			continue
		}
		m[name] = color
	}
	t.remote = m
	t.mu.Unlock()
	t.changed()
}

// Put registers a tag that was just saved remotely, ahead of the
// snapshot that will carry it.
func (t *Tags) Put(tag domain.Tag) {
	t.mu.Lock()
	t.remote[tag.Name] = tag.Color
	t.pending[tag.Name] = tag.Color
	t.mu.Unlock()
	t.changed()
}

// All returns the merged registry: defaults first in palette order (with
// remote colors taking precedence), then remote-only tags sorted by name.
func (t *Tags) All() []domain.Tag {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Tag, 0, len(t.defaults)+len(t.remote))
	seen := make(map[string]bool, len(t.defaults))
	for _, d := range t.defaults {
		if c, ok := t.remote[d.Name]; ok {
			d.Color = c
		}
		out = append(out, d)
		seen[d.Name] = true
	}

	extra := make([]domain.Tag, 0, len(t.remote))
	for name, color := range t.remote {
		if !seen[name] {
			extra = append(extra, domain.Tag{Name: name, Color: color})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Name < extra[j].Name })
	return append(out, extra...)
}

// Has reports whether name is registered. Names are case-sensitive.
func (t *Tags) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.remote[name]; ok {
		return true
	}
	for _, d := range t.defaults {
		if d.Name == name {
			return true
		}
	}
	return false
}
