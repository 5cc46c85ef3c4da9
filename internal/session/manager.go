package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/metrics"
	"github.com/MrSnakeDoc/kupovina/internal/mirror"
	"github.com/MrSnakeDoc/kupovina/internal/scheduler"
	"github.com/MrSnakeDoc/kupovina/internal/shopping"
	redisstore "github.com/MrSnakeDoc/kupovina/internal/store/redis"
)

// DefaultTTL is how long an idle session lives.
const DefaultTTL = 12 * time.Hour

// Config tunes the sessions a Manager creates.
type Config struct {
	TTL              time.Duration
	PresenceInterval time.Duration
	DefaultTags      []domain.Tag
	Controller       shopping.Options
}

// Manager owns every live session.
type Manager struct {
	store  *redisstore.Store
	logger logger.Logger
	cfg    Config
	now    func() time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager over store.
func NewManager(store *redisstore.Store, log logger.Logger, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.DefaultTags == nil {
		cfg.DefaultTags = domain.DefaultTags
	}
	now := cfg.Controller.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:      store,
		logger:     log,
		cfg:        cfg,
		now:        now,
		baseCtx:    ctx,
		baseCancel: cancel,
		sessions:   make(map[string]*Session),
	}
}

// Start signs username in: it subscribes to changes, loads the documents
// and marks the user online. The session is not bound to ctx; it lives
// until End, Reap or Shutdown.
func (m *Manager) Start(ctx context.Context, username string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	log := m.logger.With(logger.String("session", id), logger.String("user", username))

	sctx, cancel := context.WithCancel(m.baseCtx)

	mir := mirror.New(m.cfg.DefaultTags)
	syncer := scheduler.NewSnapshotSyncer(m.store, mir, log)
	if err := syncer.Start(sctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start session for %s: %w", username, err)
	}

	hb := scheduler.NewPresenceHeartbeat(m.store, username, log, m.cfg.PresenceInterval)
	if err := hb.Start(sctx); err != nil {
		syncer.Stop()
		cancel()
		return nil, fmt.Errorf("failed to start presence for %s: %w", username, err)
	}

	now := m.now()
	s := &Session{
		ID:        id,
		Username:  username,
		CreatedAt: now,
		mirror:    mir,
		ctrl:      shopping.NewController(username, m.store, mir, log, m.cfg.Controller),
		syncer:    syncer,
		heartbeat: hb,
		ctx:       sctx,
		cancel:    cancel,
		logger:    log,
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	log.Info("session started", logger.Int("active", n))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Touch records activity on a session. It reports whether the session exists.
func (m *Manager) Touch(id string) bool {
	s, ok := m.Get(id)
	if ok {
		s.touch(m.now())
	}
	return ok
}

// End signs a session out. The user is marked offline only when this was
// their last live session.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	lastOne := ok && !m.hasUserLocked(s.Username)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	metrics.ActiveSessions.Dec()
	return s.end(ctx, lastOne)
}

func (m *Manager) hasUserLocked(username string) bool {
	for _, s := range m.sessions {
		if s.Username == username {
			return true
		}
	}
	return false
}

// Reap ends every session idle for at least the TTL and returns how many.
func (m *Manager) Reap(ctx context.Context, now time.Time) int {
	m.mu.RLock()
	var idle []string
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) >= m.cfg.TTL {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range idle {
		err := m.End(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			continue
		}
		if err != nil {
			m.logger.Warn("error ending idle session", logger.String("session", id), logger.Error(err))
		}
		n++
	}
	return n
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Users returns the usernames with at least one live session, sorted.
func (m *Manager) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var users []string
	for _, s := range m.sessions {
		if !seen[s.Username] {
			seen[s.Username] = true
			users = append(users, s.Username)
		}
	}
	sort.Strings(users)
	return users
}

// Shutdown ends every session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if err := m.End(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	m.baseCancel()
	return errors.Join(errs...)
}
