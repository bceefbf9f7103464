package mapengine

import "sync"

// EventClick is fired when a placemark or cluster is clicked.
const EventClick = "click"

// Event is delivered to subscribers. Target is a Placemark or a Cluster.
type Event struct {
	Name   string
	Target any
}

// Get mirrors the library accessor for event fields.
func (e Event) Get(field string) any {
	if field == "target" {
		return e.Target
	}
	return nil
}

// HandlerFunc receives events.
type HandlerFunc func(Event)

// Events is a subscription list keyed by event name.
type Events struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewEvents creates an empty subscription list.
func NewEvents() *Events {
	return &Events{handlers: make(map[string][]HandlerFunc)}
}

// Add subscribes h to events named name.
func (e *Events) Add(name string, h HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = append(e.handlers[name], h)
}

// Fire calls every handler subscribed to ev.Name, in subscription order.
// Handlers run to completion before Fire returns.
func (e *Events) Fire(ev Event) {
	e.mu.RLock()
	hs := append([]HandlerFunc(nil), e.handlers[ev.Name]...)
	e.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// Count returns the number of handlers subscribed to name.
func (e *Events) Count(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[name])
}
