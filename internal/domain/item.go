package domain

import (
	"strings"
	"time"
)

// Item is a named entry on one of the two shared lists.
//
// Identity is the ID. Items are never edited in place: a move changes the
// owning list, a delete removes the item, nothing else mutates it.
type Item struct {
	// ID is unique within its list. See NewID.
	ID string `json:"id"`

	// Name is the display name. Case-insensitive uniqueness across both
	// lists is checked when the item is added, not stored as an invariant.
	Name string `json:"name"`

	// AddedBy is the username of the session that created the item.
	AddedBy string `json:"addedBy"`

	// AddedAt is the creation time.
	AddedAt time.Time `json:"addedAt"`

	// Tag is the optional tag name used to group the item for display.
	Tag string `json:"tag,omitempty"`
}

// NormalizeName trims surrounding whitespace from a user-supplied name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// SameName reports whether two item names collide (case-insensitive).
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}
