package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
)

func init() { Register(registerRecipes) }

func registerRecipes(r chi.Router, d deps.Deps) {
	s := signedIn(r, d)
	s.Get("/api/recipes", handlers.ListRecipes(d))
	s.Post("/api/recipes", handlers.AddRecipe(d))
	s.Post("/api/recipes/{id}/notes", handlers.AnnotateRecipe(d))
}
