package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	host := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	host.Get("/login", handlers.LoginPage(d))
	host.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.LoginBurst,
		RefillPerIPPerMin: d.LoginRefillPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})).Post("/api/login", handlers.Login(d))

	signedIn(r, d).Post("/api/logout", handlers.Logout(d))
}
