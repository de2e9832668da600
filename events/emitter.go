// Package events provides the synchronous observer registry PLCS uses to
// fire head-changed/complete/committed/aborted notifications (spec.md §6).
package events

import (
	"sync"

	"github.com/chainlight/plcs/log"
)

// Name identifies an event kind.
type Name string

// The four events PLCS emits (spec.md §6).
const (
	HeadChanged Name = "head-changed"
	Complete    Name = "complete"
	Committed   Name = "committed"
	Aborted     Name = "aborted"
)

// Handler is a callback invoked for a matching event.
type Handler func(payload any)

// Emitter is a simple pub/sub broker. Subscribe before Emit; delivery is
// synchronous and in subscription order within the emitting task, per
// spec.md §5.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler
}

// New creates an Emitter with no subscribers.
func New() *Emitter {
	return &Emitter{handlers: make(map[Name][]Handler)}
}

// On registers h to be called whenever name is emitted.
func (e *Emitter) On(name Name, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = append(e.handlers[name], h)
}

// Emit delivers payload to every subscriber of name, synchronously. A
// misbehaving subscriber cannot abort the synchronizer's own task: panics
// are recovered and logged.
func (e *Emitter) Emit(name Name, payload any) {
	e.mu.RLock()
	handlers := e.handlers[name]
	e.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Warnf("events: handler for %s panicked: %v", name, r)
				}
			}()
			h(payload)
		}()
	}
}
