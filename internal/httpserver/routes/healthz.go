package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
)

func init() { Register(registerHealthz) }

func registerHealthz(r chi.Router, d deps.Deps) {
	internalOnly(r, d).Get("/healthz", handlers.Healthz(d))
}
