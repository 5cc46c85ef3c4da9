package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
)

type addRecipeRequest struct {
	Title string `json:"title"`
}

type annotateRequest struct {
	Text string `json:"text"`
}

// ListRecipes returns the shared recipes, oldest first.
func ListRecipes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.Mirror().Recipes.All())
	}
}

// AddRecipe creates a recipe.
func AddRecipe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req addRecipeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}
		recipe, err := s.Controller().AddRecipe(r.Context(), req.Title)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, recipe)
	}
}

// AnnotateRecipe appends a note to a recipe.
func AnnotateRecipe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req annotateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}
		recipe, err := s.Controller().AnnotateRecipe(r.Context(), chi.URLParam(r, "id"), req.Text)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recipe)
	}
}
