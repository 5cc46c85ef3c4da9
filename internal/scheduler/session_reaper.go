package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/logger"
)

// DefaultReapInterval is how often idle sessions are looked for.
const DefaultReapInterval = time.Minute

// Reaper ends sessions idle at now and reports how many it ended.
type Reaper interface {
	Reap(ctx context.Context, now time.Time) int
}

// SessionReaper periodically ends idle sessions.
type SessionReaper struct {
	reaper   Reaper
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(r Reaper, log logger.Logger, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &SessionReaper{
		reaper:   r,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reaping
func (sr *SessionReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.Collect(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper
func (sr *SessionReaper) Stop() {
	close(sr.stopCh)
}

// Collect ends every idle session once and returns the count.
func (sr *SessionReaper) Collect(ctx context.Context) int {
	n := sr.reaper.Reap(ctx, sr.now())
	if n > 0 {
		sr.logger.Info("reaped idle sessions", logger.Int("count", n))
	} else {
		sr.logger.Debug("no idle sessions to reap")
	}
	return n
}
