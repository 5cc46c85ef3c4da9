package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
)

func init() { Register(registerView) }

func registerView(r chi.Router, d deps.Deps) {
	s := signedIn(r, d)
	s.Get("/", handlers.AppPage(d))
	s.Get("/api/view", handlers.View(d))
	s.Post("/api/presence/ping", handlers.PresencePing(d))
	s.Delete("/api/banner", handlers.DismissBanner(d))
}
