package presenter

import "sync"

// EventKind names what changed.
type EventKind int

const (
	EventRanking EventKind = iota
	EventSearch
	EventToggle
)

func (k EventKind) String() string {
	switch k {
	case EventRanking:
		return "ranking"
	case EventSearch:
		return "search"
	case EventToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Event carries a snapshot of the view after the change.
type Event struct {
	Kind EventKind
	View View
}

// Handler receives events.
type Handler func(Event)

// Dispatcher delivers events to subscribers synchronously, in subscription order.
type Dispatcher struct {
	mu   sync.RWMutex
	subs map[EventKind][]Handler
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[EventKind][]Handler)}
}

// Subscribe registers h for kind. It is a no-op on a nil Dispatcher.
func (d *Dispatcher) Subscribe(kind EventKind, h Handler) {
	if d == nil || h == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs[kind] = append(d.subs[kind], h)
}

// Publish calls every handler subscribed to e.Kind. A nil Dispatcher drops the event.
func (d *Dispatcher) Publish(e Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	handlers := append([]Handler(nil), d.subs[e.Kind]...)
	d.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
