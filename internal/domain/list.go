package domain

import (
	"fmt"
	"sort"
)

// ListName identifies one of the two shared lists.
type ListName string

const (
	// ListHave holds items the household already has.
	ListHave ListName = "have"
	// ListToBuy holds items pending purchase.
	ListToBuy ListName = "toBuy"
)

// AllLists is the fixed set of lists, in display order.
var AllLists = []ListName{ListHave, ListToBuy}

// ParseListName validates a list name coming from the outside.
func ParseListName(s string) (ListName, error) {
	switch ListName(s) {
	case ListHave, ListToBuy:
		return ListName(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownList, s)
	}
}

func (l ListName) String() string { return string(l) }

// Lists is a full snapshot of both lists, keyed by item ID.
type Lists struct {
	Have  map[string]Item `json:"have"`
	ToBuy map[string]Item `json:"toBuy"`
}

// NewLists returns an empty snapshot.
func NewLists() Lists {
	return Lists{
		Have:  make(map[string]Item),
		ToBuy: make(map[string]Item),
	}
}

// Of returns the mapping for a list. The map is shared, not copied.
func (l Lists) Of(name ListName) map[string]Item {
	if name == ListHave {
		return l.Have
	}
	return l.ToBuy
}

// Clone returns a deep copy of the snapshot.
func (l Lists) Clone() Lists {
	out := Lists{
		Have:  make(map[string]Item, len(l.Have)),
		ToBuy: make(map[string]Item, len(l.ToBuy)),
	}
	for id, it := range l.Have {
		out.Have[id] = it
	}
	for id, it := range l.ToBuy {
		out.ToBuy[id] = it
	}
	return out
}

// Locate returns the list currently holding id.
func (l Lists) Locate(id string) (ListName, Item, bool) {
	if it, ok := l.Have[id]; ok {
		return ListHave, it, true
	}
	if it, ok := l.ToBuy[id]; ok {
		return ListToBuy, it, true
	}
	return "", Item{}, false
}

// FindByName returns the first item in either list whose name collides with name.
func (l Lists) FindByName(name string) (ListName, Item, bool) {
	for _, list := range AllLists {
		for _, it := range l.Of(list) {
			if SameName(it.Name, name) {
				return list, it, true
			}
		}
	}
	return "", Item{}, false
}

// Sorted returns the items of a list ordered by AddedAt, then ID.
func (l Lists) Sorted(name ListName) []Item {
	m := l.Of(name)
	items := make([]Item, 0, len(m))
	for _, it := range m {
		items = append(items, it)
	}
	sortItems(items)
	return items
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].ID < items[j].ID
	})
}

// ListPatch is a keyed set-or-delete patch over both lists.
// A nil *Item deletes the key; a non-nil one sets it.
type ListPatch map[ListName]map[string]*Item

// Set records a write of item under list.
func (p ListPatch) Set(list ListName, item Item) ListPatch {
	p.entries(list)[item.ID] = &item
	return p
}

// Delete records a removal of id from list.
func (p ListPatch) Delete(list ListName, id string) ListPatch {
	p.entries(list)[id] = nil
	return p
}

func (p ListPatch) entries(list ListName) map[string]*Item {
	m, ok := p[list]
	if !ok {
		m = make(map[string]*Item)
		p[list] = m
	}
	return m
}

// Apply replays the patch onto a snapshot in place.
func (p ListPatch) Apply(l Lists) {
	for list, entries := range p {
		m := l.Of(list)
		for id, it := range entries {
			if it == nil {
				delete(m, id)
				continue
			}
			m[id] = *it
		}
	}
}
