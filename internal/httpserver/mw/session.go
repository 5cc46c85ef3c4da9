package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/metrics"
	"github.com/MrSnakeDoc/kupovina/internal/session"
)

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = "kupovina_session"

// LoginPath is where HTML requests without a session are sent.
const LoginPath = "/login"

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session put there by RequireSession.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok && s != nil
}

// TokenFromRequest returns the session token from the Authorization header
// (Bearer) or, failing that, from the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession only lets through requests carrying a valid token for a
// live session. HTML requests without one are redirected to the login
// page; everything else gets 401.
func RequireSession(sessions *session.Manager, tokens *session.TokenManager, cookieName string, log logger.Logger) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.Validate(TokenFromRequest(r, cookieName))
			if err != nil {
				log.Debugf("RequireSession: rejected token on %s: %v", r.URL.Path, err)
				deny(w, r)
				return
			}

			s, ok := sessions.Get(claims.SessionID())
			if !ok || s.Username != claims.Username {
				log.Debugf("RequireSession: no live session %s for %s", claims.SessionID(), claims.Username)
				deny(w, r)
				return
			}

			sessions.Touch(s.ID)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		metrics.Reject(metrics.ReasonUnauthorized)
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	reject(w, http.StatusUnauthorized, metrics.ReasonUnauthorized)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
