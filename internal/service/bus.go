package service

import "sync"

// EventAction names the kind of view change an Event reports.
type EventAction string

const (
	ActionCreated    EventAction = "created"
	ActionSelected   EventAction = "selected"
	ActionRecentered EventAction = "recentered"
	ActionScrollZoom EventAction = "scroll-zoom"
	ActionDeleted    EventAction = "deleted"
)

// Event represents a change to a session's view.
type Event struct {
	Session    string
	Action     EventAction
	Measurable string // active measurable after the change
}

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16

// EventBus fans view change events out to subscribers. A subscriber bound
// to a session only receives that session's events, so a busy session
// cannot fill another viewer's buffer.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]string
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]string)}
}

// Publish delivers e to every matching subscriber without blocking.
// Events for a subscriber whose buffer is full are dropped.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, session := range b.subs {
		if session != "" && session != e.Session {
			continue
		}
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a buffered channel receiving events for session, or
// for every session when session is empty.
func (b *EventBus) Subscribe(session string) chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = session
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. It is safe to
// call more than once.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Len returns the number of subscribers.
func (b *EventBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
