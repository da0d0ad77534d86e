package preview

import (
	"sync"
	"time"
)

// Event notifies a subscriber that the named screen changed.
type Event struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// Subscription is one open preview connection bound to a screen name. It
// exists only for the connection's lifetime.
type Subscription struct {
	name   string
	events chan Event
}

// Events answers the subscription's event channel. The channel is closed
// when the subscription is released or the hub shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Hub routes screen update notifications to open preview subscriptions.
// Publishing never blocks: a slow subscriber keeps only the latest event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a subscription for the given screen name.
func (h *Hub) Subscribe(name string) *Subscription {
	sub := &Subscription{name: name, events: make(chan Event, 1)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.events)
		return sub
	}

	if h.subs[name] == nil {
		h.subs[name] = make(map[*Subscription]struct{})
	}
	h.subs[name][sub] = struct{}{}

	return sub
}

// Unsubscribe releases the subscription and its buffer. Only the caller
// that removes the subscription from the registry closes the channel,
// preventing double-close during shutdown.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.name]
	if !ok {
		return
	}
	if _, existed := set[sub]; !existed {
		return
	}

	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.name)
	}

	close(sub.events)
}

// Publish notifies every subscription bound to the given name. Other
// names never see the event. A full buffer is drained first so a stalled
// consumer observes the latest update.
func (h *Hub) Publish(name string) {
	event := Event{Name: name, At: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for sub := range h.subs[name] {
		select {
		case sub.events <- event:
		default:
			select {
			case <-sub.events:
			default:
			}
			select {
			case sub.events <- event:
			default:
			}
		}
	}
}

// Close shuts the hub down and releases every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for name, set := range h.subs {
		for sub := range set {
			close(sub.events)
		}
		delete(h.subs, name)
	}
}

// Count answers the number of open subscriptions for a name.
func (h *Hub) Count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[name])
}
