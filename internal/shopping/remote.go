package shopping

import (
	"context"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// Remote is the write side of the document store used by the controller.
// *redis.Store implements it.
type Remote interface {
	InsertItemUnique(ctx context.Context, list domain.ListName, item domain.Item) error
	ApplyListPatch(ctx context.Context, patch domain.ListPatch) error
	SaveTag(ctx context.Context, tag domain.Tag) error
	SaveRecipe(ctx context.Context, recipe domain.Recipe) error
	AppendRecipeNote(ctx context.Context, id string, note domain.RecipeNote) (domain.Recipe, error)
}

// Confirmer is asked before a delete. Returning false cancels it.
type Confirmer func(item domain.Item) bool
