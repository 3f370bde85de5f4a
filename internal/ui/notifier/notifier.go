// Package notifier tracks which rendered pages are stale.
//
// Pages are keyed by URL path. Invalidate drops a path's cached render and
// pings every SSE listener watching that path so open browsers re-fetch.
// Invalidation is local to the process; a TTL bounds how long a render
// can outlive writes made by other instances.
package notifier

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"
)

// Notifier holds the rendered-page cache and the per-path listeners.
// Listeners receive an empty struct when their page is stale and should
// re-query the store.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[string]map[chan struct{}]struct{}
	pages     map[string]page
	// generations counts invalidations per path. A render is only stored
	// if no invalidation happened while it ran.
	generations map[string]uint64
	ttl         time.Duration
	now         func() time.Time
}

type page struct {
	body     []byte
	rendered time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithTTL expires cached renders after ttl. Zero keeps them until invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(n *Notifier) { n.ttl = ttl }
}

// WithClock replaces time.Now. Used for testing.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// New creates a new Notifier instance.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		listeners:   make(map[string]map[chan struct{}]struct{}),
		pages:       make(map[string]page),
		generations: make(map[string]uint64),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func normalize(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// Subscribe returns a channel that receives pings when path is invalidated.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(path string) chan struct{} {
	path = normalize(path)
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	set, ok := n.listeners[path]
	if !ok {
		set = make(map[chan struct{}]struct{})
		n.listeners[path] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it. Unsubscribing a
// channel that is not registered is a no-op.
func (n *Notifier) Unsubscribe(path string, ch chan struct{}) {
	path = normalize(path)

	n.mu.Lock()
	defer n.mu.Unlock()

	set, ok := n.listeners[path]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(n.listeners, path)
	}
	close(ch)
}

// Invalidate marks paths stale. Their cached renders are dropped and their
// listeners are pinged. The next request re-renders from the store.
func (n *Notifier) Invalidate(paths ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, p := range paths {
		p = normalize(p)
		delete(n.pages, p)
		n.generations[p]++

		for ch := range n.listeners[p] {
			select {
			case ch <- struct{}{}:
			default:
				// Channel full, skip (listener will catch up on next ping)
			}
		}
	}
}

// Cached returns the cached render for path, if any and not expired.
func (n *Notifier) Cached(path string) ([]byte, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cachedLocked(normalize(path))
}

func (n *Notifier) cachedLocked(path string) ([]byte, bool) {
	p, ok := n.pages[path]
	if !ok {
		return nil, false
	}
	if n.ttl > 0 && n.now().Sub(p.rendered) >= n.ttl {
		return nil, false
	}
	return p.body, true
}

// Render returns the cached body for path, calling render to fill the cache
// on a miss. A failed render is not cached, and neither is one that raced
// with an Invalidate of the same path.
func (n *Notifier) Render(path string, render func(w io.Writer) error) ([]byte, error) {
	path = normalize(path)

	n.mu.RLock()
	body, ok := n.cachedLocked(path)
	gen := n.generations[path]
	n.mu.RUnlock()
	if ok {
		return body, nil
	}

	started := n.now()
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, err
	}
	body = buf.Bytes()

	n.mu.Lock()
	if n.generations[path] == gen {
		n.pages[path] = page{body: body, rendered: started}
	}
	n.mu.Unlock()
	return body, nil
}

// Listeners reports how many listeners are watching path.
func (n *Notifier) Listeners(path string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners[normalize(path)])
}
