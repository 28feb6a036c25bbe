// Package events fans committed table changes out to registered listeners.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

// Listener receives change events. It runs on the publisher's goroutine
// and must not block for long.
type Listener = func(domain.ChangeEvent)

// Broker keeps the set of active subscriptions.
type Broker struct {
	mu        sync.RWMutex
	listeners map[uuid.UUID]Listener
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		listeners: make(map[uuid.UUID]Listener),
	}
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (b *Broker) Subscribe(fn Listener) (unsubscribe func()) {
	id := uuid.New()

	b.mu.Lock()
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every listener registered at call time.
// Listeners are invoked outside the lock so they may call back into the store.
func (b *Broker) Publish(ev domain.ChangeEvent) {
	b.mu.RLock()
	snapshot := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		snapshot = append(snapshot, fn)
	}
	b.mu.RUnlock()

	for _, fn := range snapshot {
		fn(ev)
	}
}

// Len returns the number of active subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.listeners)
}
