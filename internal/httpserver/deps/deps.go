package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/session"
)

type Deps struct {
	Logger             logger.Logger
	StartTime          time.Time
	Version            string
	Commit             string
	BuildDate          string
	GoVersion          string
	TimeNow            func() time.Time       // for testing, defaults to time.Now
	AllowedHosts       []string               // Host headers allowed to access the API
	AllowedCIDRS       []string               // IPs allowed to access healthz/readyz/infra/metrics
	TrustProxy         bool                   // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RedisClient        *redis.Client          // Redis client connection
	Sessions           *session.Manager       // Live sessions
	Auth               *session.Authenticator // Password check against the users file
	Tokens             *session.TokenManager  // Session token signer
	CookieName         string                 // Name of the session cookie
	CookieSecure       bool                   // Set the Secure flag on the session cookie
	LoginBurst         int                    // Login attempts allowed per IP before throttling
	LoginRefillPerMin  int                    // Login attempts regained per IP per minute
	StreamPingInterval time.Duration          // WebSocket keepalive ping interval
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
