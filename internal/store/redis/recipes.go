package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/redis/go-redis/v9"
)

// GetRecipes returns every recipe keyed by ID.
func (s *Store) GetRecipes(ctx context.Context) (map[string]domain.Recipe, error) {
	raw, err := s.client.HGetAll(ctx, s.RecipesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	recipes := make(map[string]domain.Recipe, len(raw))
	for id, data := range raw {
		var r domain.Recipe
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			continue
		}
		r.ID = id
		recipes[id] = r
	}
	return recipes, nil
}

// SaveRecipe writes a recipe, replacing any previous version.
func (s *Store) SaveRecipe(ctx context.Context, recipe domain.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.RecipesKey(), recipe.ID, data)
		s.publish(ctx, pipe, RootRecipes)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// AppendRecipeNote appends note to recipe id. The read-modify-write runs
// under WATCH on the recipes hash so concurrent annotations are not lost.
func (s *Store) AppendRecipeNote(ctx context.Context, id string, note domain.RecipeNote) (domain.Recipe, error) {
	var updated domain.Recipe

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, s.RecipesKey(), id).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNoRecipe
		}
		if err != nil {
			return err
		}

		var r domain.Recipe
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("failed to unmarshal recipe: %w", err)
		}
		r.ID = id
		r.Notes = append(r.Notes, note)

		out, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal recipe: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.RecipesKey(), id, out)
			s.publish(ctx, pipe, RootRecipes)
			return nil
		})
		if err == nil {
			updated = r
		}
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, txf, s.RecipesKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, domain.ErrNoRecipe) {
			return domain.Recipe{}, err
		}
		if err != nil {
			return domain.Recipe{}, fmt.Errorf("failed to annotate recipe: %w", err)
		}
		return updated, nil
	}
	return domain.Recipe{}, fmt.Errorf("failed to annotate recipe: %w", err)
}
