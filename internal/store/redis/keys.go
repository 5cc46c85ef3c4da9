package redis

import (
	"fmt"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// DefaultKeyPrefix namespaces every key and channel the store touches.
const DefaultKeyPrefix = "kupovina"

// Root names a top-level document. Change notifications carry the root
// that was written so subscribers reload only that part.
type Root string

const (
	RootLists    Root = "lists"
	RootTags     Root = "tags"
	RootPresence Root = "presence"
	RootRecipes  Root = "recipes"
)

// AllRoots lists every document root, in load order.
var AllRoots = []Root{RootLists, RootTags, RootPresence, RootRecipes}

// ParseRoot validates a root received on the change channel.
func ParseRoot(s string) (Root, error) {
	switch Root(s) {
	case RootLists, RootTags, RootPresence, RootRecipes:
		return Root(s), nil
	default:
		return "", fmt.Errorf("unknown document root: %q", s)
	}
}

// ListKey returns the hash holding one list (item ID -> item JSON).
func (s *Store) ListKey(list domain.ListName) string {
	return s.prefix + ":lists:" + string(list)
}

// TagsKey returns the hash holding user-added tags (name -> color).
func (s *Store) TagsKey() string {
	return s.prefix + ":tags"
}

// PresenceKey returns the hash holding presence records (username -> JSON).
func (s *Store) PresenceKey() string {
	return s.prefix + ":presence"
}

// RecipesKey returns the hash holding recipes (ID -> JSON).
func (s *Store) RecipesKey() string {
	return s.prefix + ":recipes"
}

// ChangesChannel returns the pub/sub channel announcing written roots.
func (s *Store) ChangesChannel() string {
	return s.prefix + ":changes"
}
