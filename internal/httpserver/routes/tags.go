package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
)

func init() { Register(registerTags) }

func registerTags(r chi.Router, d deps.Deps) {
	s := signedIn(r, d)
	s.Get("/api/tags", handlers.ListTags(d))
	s.Post("/api/tags", handlers.AddTag(d))
}
