package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/mirror"
	"github.com/MrSnakeDoc/kupovina/internal/scheduler"
	"github.com/MrSnakeDoc/kupovina/internal/shopping"
)

// Session is one signed-in browser.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time

	mirror    *mirror.Mirror
	ctrl      *shopping.Controller
	syncer    *scheduler.SnapshotSyncer
	heartbeat *scheduler.PresenceHeartbeat
	ctx       context.Context
	cancel    context.CancelFunc
	logger    logger.Logger

	mu       sync.Mutex
	lastSeen time.Time
	endOnce  sync.Once
	endErr   error
}

// Controller returns the session's mutation controller.
func (s *Session) Controller() *shopping.Controller { return s.ctrl }

// Mirror returns the session's local copy of the remote documents.
func (s *Session) Mirror() *mirror.Mirror { return s.mirror }

// Watch signals after every change visible in the view.
func (s *Session) Watch() (<-chan struct{}, func()) { return s.mirror.Watch() }

// Ping refreshes presence out of band. Best effort.
func (s *Session) Ping() { s.heartbeat.Ping() }

// Done is closed once the session has ended.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// DismissError clears the error banner.
func (s *Session) DismissError() { s.mirror.DismissError() }

// LastSeen returns the time of the last request on this session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

// end tears the session down: unsubscribe and stop the heartbeat. With
// markOffline it also writes the user's offline record. Only the first
// call does anything.
func (s *Session) end(ctx context.Context, markOffline bool) error {
	s.endOnce.Do(func() {
		s.syncer.Stop()
		s.heartbeat.Stop()
		if markOffline {
			if err := s.heartbeat.Offline(ctx); err != nil {
				s.endErr = fmt.Errorf("failed to mark %s offline: %w", s.Username, err)
			}
		}
		s.cancel()
		s.logger.Info("session ended")
	})
	return s.endErr
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrSessionNotFound) }
