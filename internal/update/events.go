// Package update forwards application update lifecycle events to the UI.
//
// The shell does not download or install binaries itself. An update Source
// reports lifecycle events; the Forwarder turns each one into a single status
// message and, once an update has been downloaded, asks whether to restart.
package update

import (
	"context"
	"sync"
)

// Kind is an update lifecycle event.
type Kind string

const (
	KindChecking     Kind = "checking"
	KindAvailable    Kind = "available"
	KindNotAvailable Kind = "not-available"
	KindProgress     Kind = "progress"
	KindDownloaded   Kind = "downloaded"
	KindError        Kind = "error"
)

// Event is one lifecycle notification from a Source.
type Event struct {
	Kind    Kind
	Version string
	// Percent is set for KindProgress, 0..100.
	Percent float64
	Err     error
}

// Source emits update lifecycle events.
type Source interface {
	// Subscribe registers fn for every future event and returns a function
	// that removes it.
	Subscribe(fn func(Event)) (unsubscribe func())
	// Check starts an update check. Results arrive as events.
	Check(ctx context.Context)
}

// Hub fans events out to subscribers. Sources embed it.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// Subscribe implements Source.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]func(Event))
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Emit delivers ev to every subscriber synchronously, in subscription order.
func (h *Hub) Emit(ev Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.subs))
	for i := 0; i < h.nextID; i++ {
		if fn, ok := h.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
