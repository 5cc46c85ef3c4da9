package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout for API routes (not the live stream)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	UsersFile string // path to the users.yaml file (username + bcrypt hash)
	TagsFile  string // path to the tags.yaml palette (optional, empty = built-in palette)
	KeyPrefix string // prefix of every Redis key and channel

	// Sessions
	JWTSecret          string        // HS256 signing key for session tokens
	SessionTTL         time.Duration // idle lifetime of a session and lifetime of its token
	SessionReapEvery   time.Duration // how often idle sessions are looked for
	CookieName         string        // session cookie name
	CookieSecure       bool          // set Secure on the session cookie (true behind TLS)
	LoginBurst         int           // login attempts per IP before throttling
	LoginRefillPerMin  int           // login attempts regained per IP per minute
	StreamPingInterval time.Duration // WebSocket keepalive

	// List behaviour
	UndoWindow       time.Duration // how long a move/delete stays undoable (default: 5s)
	UndoDepth        int           // how many undo entries are kept (default: 1)
	EnterHighlight   time.Duration // how long a new item is flagged as entering (default: 1s)
	PresenceInterval time.Duration // presence heartbeat interval (default: 30s)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict healthz/readyz/infra/metrics to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// minSecretLen is the shortest accepted JWT secret.
const minSecretLen = 16

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("KUPOVINA_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("KUPOVINA_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("KUPOVINA_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("KUPOVINA_LOG_LEVEL", "info"),
		PrettyLog: mustBool("KUPOVINA_PRETTY_LOG", true),

		// Files
		UsersFile: getenv("KUPOVINA_USERS_FILE", "/app/users.yaml"),
		TagsFile:  getenv("KUPOVINA_TAGS_FILE", ""), // Optional, empty = built-in palette
		KeyPrefix: getenv("KUPOVINA_KEY_PREFIX", "kupovina"),

		// Sessions
		JWTSecret:          requireEnv("KUPOVINA_JWT_SECRET"),
		SessionTTL:         mustDuration("KUPOVINA_SESSION_TTL", 12*time.Hour),
		SessionReapEvery:   mustDuration("KUPOVINA_SESSION_REAP_INTERVAL", time.Minute),
		CookieName:         getenv("KUPOVINA_COOKIE_NAME", "kupovina_session"),
		CookieSecure:       mustBool("KUPOVINA_COOKIE_SECURE", true),
		LoginBurst:         getenvInt("KUPOVINA_LOGIN_BURST", 5),
		LoginRefillPerMin:  getenvInt("KUPOVINA_LOGIN_REFILL_PER_MIN", 5),
		StreamPingInterval: mustDuration("KUPOVINA_STREAM_PING_INTERVAL", 30*time.Second),

		// List behaviour
		UndoWindow:       mustDuration("KUPOVINA_UNDO_WINDOW", 5*time.Second),
		UndoDepth:        getenvInt("KUPOVINA_UNDO_DEPTH", 1),
		EnterHighlight:   mustDuration("KUPOVINA_ENTER_HIGHLIGHT", time.Second),
		PresenceInterval: mustDuration("KUPOVINA_PRESENCE_INTERVAL", 30*time.Second),

		// Redis settings
		RedisAddr:             requireEnv("KUPOVINA_REDIS_ADDR"),
		RedisUser:             getenv("KUPOVINA_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("KUPOVINA_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("KUPOVINA_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("KUPOVINA_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("KUPOVINA_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("KUPOVINA_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("KUPOVINA_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: KUPOVINA_REDIS_PASSWORD is required when KUPOVINA_REDIS_PASSWORD_REQUIRED=true")
	}

	if len(cfg.JWTSecret) < minSecretLen {
		panic(fmt.Sprintf("❌ FATAL: KUPOVINA_JWT_SECRET must be at least %d characters", minSecretLen))
	}

	if cfg.UndoDepth < 1 {
		panic(fmt.Sprintf("❌ FATAL: KUPOVINA_UNDO_DEPTH must be at least 1, got %d", cfg.UndoDepth))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.JWTSecret = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
