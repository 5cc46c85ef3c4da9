package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChangeFeed delivers the roots written by anyone, as announced on the
// changes channel. Close it to unsubscribe.
type ChangeFeed struct {
	pubsub *redis.PubSub
	out    chan Root
	errs   chan error
	done   chan struct{}
	once   sync.Once
}

// SubscribeChanges subscribes to the changes channel. It returns once
// Redis has confirmed the subscription, so any write published after the
// call returns is delivered.
func (s *Store) SubscribeChanges(ctx context.Context) (*ChangeFeed, error) {
	ps := s.client.Subscribe(ctx, s.ChangesChannel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	feed := &ChangeFeed{
		pubsub: ps,
		out:    make(chan Root, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go feed.pump(ps.Channel())
	return feed, nil
}

func (f *ChangeFeed) pump(in <-chan *redis.Message) {
	defer close(f.out)
	for msg := range in {
		root, err := ParseRoot(msg.Payload)
		if err != nil {
			select {
			case f.errs <- err:
			default:
			}
			continue
		}
		select {
		case f.out <- root:
		case <-f.done:
			return
		}
	}
}

// C delivers written roots. It is closed when the feed is closed.
func (f *ChangeFeed) C() <-chan Root { return f.out }

// Errors delivers malformed notifications. Non-fatal; buffered with capacity 1.
func (f *ChangeFeed) Errors() <-chan error { return f.errs }

// Close unsubscribes and releases the connection.
func (f *ChangeFeed) Close() error {
	var err error
	f.once.Do(func() {
		close(f.done)
		err = f.pubsub.Close()
	})
	return err
}
