package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
)

func init() { RegisterStream(registerStream) }

func registerStream(r chi.Router, d deps.Deps) {
	signedIn(r, d).Get("/api/stream", handlers.Stream(d))
}
