package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/kupovina/internal/config"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver"
	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/redis"
	"github.com/MrSnakeDoc/kupovina/internal/scheduler"
	"github.com/MrSnakeDoc/kupovina/internal/session"
	"github.com/MrSnakeDoc/kupovina/internal/shopping"
	"github.com/MrSnakeDoc/kupovina/internal/sources"
	redisstore "github.com/MrSnakeDoc/kupovina/internal/store/redis"
	"github.com/MrSnakeDoc/kupovina/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Manager
	reaper      *scheduler.SessionReaper
}

func New(cfg *config.Config) (*App, error) {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Accounts and palette first: no point dialing Redis with a broken users file
	auth, err := session.LoadAuthenticator(cfg.UsersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	loggerClient.Info("users loaded",
		logger.String("file", cfg.UsersFile),
		logger.Int("count", auth.Users()))

	tags, err := sources.NewTagsLoader(cfg.TagsFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if cfg.TagsFile == "" {
		loggerClient.Info("tags file not configured, using built-in palette",
			logger.Int("count", len(tags)))
	}

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient, cfg.KeyPrefix)

	sessions := session.NewManager(store, loggerClient, session.Config{
		TTL:              cfg.SessionTTL,
		PresenceInterval: cfg.PresenceInterval,
		DefaultTags:      tags,
		Controller: shopping.Options{
			UndoWindow:     cfg.UndoWindow,
			UndoDepth:      cfg.UndoDepth,
			EnterHighlight: cfg.EnterHighlight,
		},
	})

	reaper := scheduler.NewSessionReaper(sessions, loggerClient, cfg.SessionReapEvery)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		RedisClient:        redisClient,
		Sessions:           sessions,
		Auth:               auth,
		Tokens:             session.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL),
		CookieName:         cfg.CookieName,
		CookieSecure:       cfg.CookieSecure,
		LoginBurst:         cfg.LoginBurst,
		LoginRefillPerMin:  cfg.LoginRefillPerMin,
		StreamPingInterval: cfg.StreamPingInterval,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sessions:    sessions,
		reaper:      reaper,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Kupovina v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Kupovina %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start session reaper
	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	a.logger.Info("session reaper started",
		logger.Duration("interval", a.cfg.SessionReapEvery),
		logger.Duration("ttl", a.cfg.SessionTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.reaper.Stop()
		return err
	}

	// Stop session reaper
	a.reaper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Mark everyone offline while Redis is still reachable
	if err := a.sessions.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("some sessions did not end cleanly", logger.Error(err))
	} else {
		a.logger.Info("✅ Sessions ended")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Kupovina stopped cleanly")
	return nil
}
