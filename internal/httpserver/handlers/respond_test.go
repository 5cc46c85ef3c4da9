package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate", domain.ErrDuplicateName, http.StatusConflict},
		{"tag exists", fmt.Errorf("save: %w", domain.ErrTagExists), http.StatusConflict},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"no recipe", domain.ErrNoRecipe, http.StatusNotFound},
		{"empty name", domain.ErrEmptyName, http.StatusBadRequest},
		{"not confirmed", domain.ErrNotConfirmed, http.StatusBadRequest},
		{"unknown list", domain.ErrUnknownList, http.StatusBadRequest},
		{"remote", domain.Remote("move", errors.New("conn reset")), http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "object", input: `{"name":"Milk"}`, want: "Milk"},
		{name: "empty body", input: ``},
		{name: "malformed", input: `{"name":`, wantErr: true},
		{name: "too large", input: `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.input))
			var b body
			err := decodeJSON(httptest.NewRecorder(), r, &b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() err = %v, wantErr %v", err, tt.wantErr)
			}
			if b.Name != tt.want {
				t.Errorf("Name = %q, want %q", b.Name, tt.want)
			}
		})
	}
}
