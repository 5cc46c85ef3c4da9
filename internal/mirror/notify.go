package mirror

import "sync"

// Notifier fans a "something changed" signal out to any number of
// watchers. Signals coalesce: a slow watcher sees one pending signal, not
// a queue.
type Notifier struct {
	mu       sync.Mutex
	next     int
	watchers map[int]chan struct{}
}

// NewNotifier returns a Notifier with no watchers.
func NewNotifier() *Notifier {
	return &Notifier{watchers: make(map[int]chan struct{})}
}

// Subscribe registers a watcher. Call the returned func to unregister.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.watchers, id)
			n.mu.Unlock()
		})
	}
}

// Notify signals every watcher without blocking.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
