package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/kupovina/internal/metrics"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	internal := internalOnly(r, d)
	internal.Get("/infra", handlers.Infra(d))
	internal.Method("GET", "/metrics", metrics.Handler())
}
