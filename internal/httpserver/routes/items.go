package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
)

func init() { Register(registerItems) }

func registerItems(r chi.Router, d deps.Deps) {
	s := signedIn(r, d)
	s.Post("/api/items", handlers.AddItem(d))
	s.Post("/api/items/{id}/move", handlers.MoveItem(d))
	s.Delete("/api/items/{id}", handlers.DeleteItem(d))
	s.Post("/api/undo", handlers.Undo(d))
}
