package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
)

type addTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListTags returns the merged tag registry.
func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.Mirror().Tags.All())
	}
}

// AddTag registers a new tag.
func AddTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req addTagRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}

		tag, err := s.Controller().AddTag(r.Context(), req.Name, req.Color)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, tag)
	}
}
