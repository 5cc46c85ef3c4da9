package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
)

// DefaultPresenceInterval is how often a session refreshes its online record.
const DefaultPresenceInterval = 30 * time.Second

// PresenceWriter persists presence records.
type PresenceWriter interface {
	SavePresence(ctx context.Context, rec domain.PresenceRecord) error
}

// PresenceHeartbeat keeps one user's presence record marked online.
type PresenceHeartbeat struct {
	store    PresenceWriter
	username string
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	trigger  chan struct{}
	wg       sync.WaitGroup
}

// NewPresenceHeartbeat creates a heartbeat for username.
func NewPresenceHeartbeat(store PresenceWriter, username string, log logger.Logger, interval time.Duration) *PresenceHeartbeat {
	if interval <= 0 {
		interval = DefaultPresenceInterval
	}
	return &PresenceHeartbeat{
		store:    store,
		username: username,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		trigger:  make(chan struct{}, 1),
	}
}

// Start writes an online record and refreshes it every interval and on Ping.
func (h *PresenceHeartbeat) Start(ctx context.Context) error {
	// Write immediately on start
	if err := h.Beat(ctx); err != nil {
		h.logger.Warn("initial presence write failed", logger.Error(err))
	}

	ticker := time.NewTicker(h.interval)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.beatLogged(ctx)
			case <-h.trigger:
				h.beatLogged(ctx)
			case <-h.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Ping requests an out-of-band refresh. It never blocks.
func (h *PresenceHeartbeat) Ping() {
	select {
	case h.trigger <- struct{}{}:
	default:
	}
}

// Stop ends the refresh loop. Safe to call twice.
func (h *PresenceHeartbeat) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
	h.wg.Wait()
}

// Beat writes an online record.
func (h *PresenceHeartbeat) Beat(ctx context.Context) error {
	return h.store.SavePresence(ctx, domain.PresenceRecord{
		Username: h.username,
		Online:   true,
		LastSeen: h.now(),
	})
}

// Offline writes an offline record.
func (h *PresenceHeartbeat) Offline(ctx context.Context) error {
	return h.store.SavePresence(ctx, domain.PresenceRecord{
		Username: h.username,
		Online:   false,
		LastSeen: h.now(),
	})
}

func (h *PresenceHeartbeat) beatLogged(ctx context.Context) {
	if err := h.Beat(ctx); err != nil {
		h.logger.Warn("failed to refresh presence", logger.Error(err))
	}
}
