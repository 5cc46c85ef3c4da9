package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool     `json:"ok"`
	Count  *int     `json:"count,omitempty"`
	Users  []string `json:"users,omitempty"`
	Mode   string   `json:"mode,omitempty"`
	Impact string   `json:"impact,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"redis":    checkRedis(r.Context(), d),
			"sessions": sessionStatus(d),
			"accounts": accountStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// No accounts = nobody can sign in
	if accounts, exists := components["accounts"]; exists && !accounts.OK {
		return "critical"
	}

	// Redis down = no reads, no writes, no sync
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "critical"
	}

	return "operational"
}

func sessionStatus(d deps.Deps) componentStatus {
	if d.Sessions == nil {
		return componentStatus{OK: false, Error: "session manager not initialized"}
	}
	n := d.Sessions.Count()
	return componentStatus{OK: true, Count: &n, Users: d.Sessions.Users()}
}

func accountStatus(d deps.Deps) componentStatus {
	if d.Auth == nil {
		return componentStatus{OK: false, Error: "users not loaded"}
	}
	n := d.Auth.Users()
	return componentStatus{OK: n > 0, Count: &n}
}

func checkRedis(parent context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "lists-unavailable",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "lists-unavailable",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}
