// Package events dispatches the session's state-transition notifications.
package events

import "sync"

// Kind is one of the fixed notifications a session can emit.
type Kind int

const (
	Started Kind = iota
	Over
	Won
	ScoreUpdated

	kindCount
)

// Kinds lists every event kind.
var Kinds = [...]Kind{Started, Over, Won, ScoreUpdated}

func (k Kind) String() string {
	switch k {
	case Started:
		return "started"
	case Over:
		return "game_over"
	case Won:
		return "won"
	case ScoreUpdated:
		return "score_updated"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }

// Handler is called synchronously on the emitting goroutine. Handlers carry
// no payload; they read whatever they need through the session queries.
type Handler func()

// Dispatcher keeps one subscriber list per event kind.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers [kindCount][]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers fn for kind. Unknown kinds are ignored.
func (d *Dispatcher) Subscribe(kind Kind, fn Handler) {
	if !kind.Valid() || fn == nil {
		return
	}
	d.mu.Lock()
	d.handlers[kind] = append(d.handlers[kind], fn)
	d.mu.Unlock()
}

// SubscribeAll registers fn for every kind; fn receives the kind that fired.
func (d *Dispatcher) SubscribeAll(fn func(Kind)) {
	for _, k := range Kinds {
		kind := k
		d.Subscribe(kind, func() { fn(kind) })
	}
}

// Emit calls every handler registered for kind, in registration order.
func (d *Dispatcher) Emit(kind Kind) {
	if !kind.Valid() {
		return
	}
	d.mu.RLock()
	handlers := d.handlers[kind]
	d.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}

// Chan returns a channel receiving every emitted kind. Sends never block the
// emitter: when the buffer is full the event is dropped and dropped is
// called, if set.
func (d *Dispatcher) Chan(buffer int, dropped func(Kind)) <-chan Kind {
	ch := make(chan Kind, buffer)
	d.SubscribeAll(func(k Kind) {
		select {
		case ch <- k:
		default:
			if dropped != nil {
				dropped(k)
			}
		}
	})
	return ch
}
