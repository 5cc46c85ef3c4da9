package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/mw"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/session"
	"github.com/MrSnakeDoc/kupovina/internal/utils"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      string    `json:"user"`
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func cookieName(d deps.Deps) string {
	if d.CookieName == "" {
		return mw.DefaultCookieName
	}
	return d.CookieName
}

// Login checks credentials, starts a session and sets the session cookie.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}
		req.Username = strings.TrimSpace(req.Username)

		if err := d.Auth.Authenticate(req.Username, req.Password); err != nil {
			d.Logger.Warn("login rejected",
				logger.String("user", req.Username),
				logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}

		s, err := d.Sessions.Start(r.Context(), req.Username)
		if err != nil {
			d.Logger.Error("failed to start session", logger.String("user", req.Username), logger.Error(err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not reach the shared list, try again"})
			return
		}

		token, expires, err := d.Tokens.Generate(req.Username, s.ID)
		if err != nil {
			_ = d.Sessions.End(r.Context(), s.ID)
			writeError(w, d, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName(d),
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			Secure:   d.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, loginResponse{
			User:      req.Username,
			SessionID: s.ID,
			Token:     token,
			ExpiresAt: expires,
		})
	}
}

// Logout ends the session: the user is marked offline and unsubscribed.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}

		err := d.Sessions.End(r.Context(), s.ID)
		if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			d.Logger.Warn("logout finished with errors", logger.String("user", s.Username), logger.Error(err))
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName(d),
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   d.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
