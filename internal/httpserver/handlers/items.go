package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
)

type addItemRequest struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

type moveItemRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type deleteItemRequest struct {
	List    string `json:"list"`
	Name    string `json:"name"`
	Confirm bool   `json:"confirm"`
}

type undoResponse struct {
	Undone bool              `json:"undone"`
	Entry  *domain.UndoEntry `json:"entry,omitempty"`
}

// AddItem adds an item to the toBuy list.
func AddItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req addItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}

		item, err := s.Controller().AddItem(r.Context(), req.Name, req.Tag)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

// MoveItem moves an item between lists.
func MoveItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req moveItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}
		from, err := domain.ParseListName(req.From)
		if err != nil {
			badRequest(w, err)
			return
		}
		to, err := domain.ParseListName(req.To)
		if err != nil {
			badRequest(w, err)
			return
		}

		item, err := s.Controller().MoveItem(r.Context(), chi.URLParam(r, "id"), from, to)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

// DeleteItem deletes an item. The body must confirm the deletion and, when
// a name is given, it must match the item being deleted.
func DeleteItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req deleteItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}
		list, err := domain.ParseListName(req.List)
		if err != nil {
			badRequest(w, err)
			return
		}

		confirm := func(it domain.Item) bool {
			return req.Confirm && (req.Name == "" || domain.SameName(req.Name, it.Name))
		}
		if err := s.Controller().DeleteItem(r.Context(), chi.URLParam(r, "id"), list, confirm); err != nil {
			writeError(w, d, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Undo reverses the pending move or delete, if any.
func Undo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}
		entry, err := s.Controller().PerformUndo(r.Context())
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, undoResponse{Undone: entry != nil, Entry: entry})
	}
}
