// Package changefeed fans out record change signals to in-process watchers.
//
// Signals carry no payload: a watcher that wakes up re-reads what it watches.
// Each watcher owns a one-slot channel, so bursts of writes coalesce into a
// single pending wake-up and a slow watcher never blocks Publish.
package changefeed

import "sync"

type key struct{ collection, id string }

// Hub routes change signals by collection and record id.
type Hub struct {
	mu     sync.Mutex
	next   uint64
	byKey  map[key]map[uint64]chan struct{}
	closed bool
}

// New returns an empty hub.
func New() *Hub {
	return &Hub{byKey: make(map[key]map[uint64]chan struct{})}
}

// Watch registers interest in one record, or in every record of the
// collection when id is empty. The returned cancel func is idempotent and
// closes the channel.
func (h *Hub) Watch(collection, id string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	k := key{collection, id}
	h.next++
	n := h.next
	if h.byKey[k] == nil {
		h.byKey[k] = make(map[uint64]chan struct{})
	}
	h.byKey[k][n] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.byKey[k]; ok {
				if c, ok := subs[n]; ok {
					delete(subs, n)
					close(c)
				}
				if len(subs) == 0 {
					delete(h.byKey, k)
				}
			}
		})
	}
}

// Publish wakes watchers of the record and of its collection.
func (h *Hub) Publish(collection, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	signal(h.byKey[key{collection, id}])
	if id != "" {
		signal(h.byKey[key{collection, ""}])
	}
}

// Watchers returns the number of live registrations.
func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, subs := range h.byKey {
		n += len(subs)
	}
	return n
}

// Close closes every watcher channel. Later Watch calls get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for k, subs := range h.byKey {
		for _, c := range subs {
			close(c)
		}
		delete(h.byKey, k)
	}
}

func signal(subs map[uint64]chan struct{}) {
	for _, c := range subs {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}
