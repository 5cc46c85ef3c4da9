package mirror

import (
	"sort"
	"sync"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// Presence mirrors every user's presence record.
type Presence struct {
	mu      sync.RWMutex
	records map[string]domain.PresenceRecord
	changed func()
}

func newPresence(changed func()) *Presence {
	return &Presence{records: map[string]domain.PresenceRecord{}, changed: changed}
}

// Replace swaps in the remote records.
func (p *Presence) Replace(records map[string]domain.PresenceRecord) {
	m := make(map[string]domain.PresenceRecord, len(records))
	for k, v := range records {
		m[k] = v
	}
	p.mu.Lock()
	p.records = m
	p.mu.Unlock()
	p.changed()
}

// OthersOnline returns the usernames marked online, excluding me, sorted.
func (p *Presence) OthersOnline(me string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]string, 0, len(p.records))
	for name, rec := range p.records {
		if name == me || !rec.Online {
			continue
		}
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

// Get returns one user's record.
func (p *Presence) Get(username string) (domain.PresenceRecord, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rec, ok := p.records[username]
	return rec, ok
}
