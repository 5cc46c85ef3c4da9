package mirror

import (
	"sort"
	"sync"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// Recipes mirrors the shared recipes.
type Recipes struct {
	mu      sync.RWMutex
	recipes map[string]domain.Recipe
	changed func()
}

func newRecipes(changed func()) *Recipes {
	return &Recipes{recipes: map[string]domain.Recipe{}, changed: changed}
}

// Replace swaps in the remote recipes.
func (r *Recipes) Replace(recipes map[string]domain.Recipe) {
	m := make(map[string]domain.Recipe, len(recipes))
	for k, v := range recipes {
		m[k] = v
	}
	r.mu.Lock()
	r.recipes = m
	r.mu.Unlock()
	r.changed()
}

// All returns the recipes ordered by creation time.
func (r *Recipes) All() []domain.Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns one recipe.
func (r *Recipes) Get(id string) (domain.Recipe, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recipes[id]
	return rec, ok
}
