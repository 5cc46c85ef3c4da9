package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/mw"
)

// signedIn scopes r to requests from a live session on an allowed host.
func signedIn(r chi.Router, d deps.Deps) chi.Router {
	return r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RequireSession(d.Sessions, d.Tokens, d.CookieName, d.Logger),
	)
}

// internalOnly scopes r to the operator CIDR allowlist.
func internalOnly(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
}
