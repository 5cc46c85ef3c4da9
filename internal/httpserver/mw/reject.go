package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/kupovina/internal/metrics"
)

// reject answers a gated request with a JSON error and counts it under reason.
func reject(w http.ResponseWriter, status int, reason string) {
	metrics.Reject(reason)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}
