package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
)

// View returns the full UI model of the session.
func View(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.View(d.Now()))
	}
}

// DismissBanner clears the sync error banner.
func DismissBanner(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		s.DismissError()
		w.WriteHeader(http.StatusNoContent)
	}
}

// PresencePing refreshes the caller's online record. Best effort.
func PresencePing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		s.Ping()
		w.WriteHeader(http.StatusNoContent)
	}
}
