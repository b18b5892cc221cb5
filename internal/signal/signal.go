// Package signal provides the observer hub shared by base and derived
// collections.
//
// A Hub fans out a parameterless "something changed" notification. It
// carries no payload: observers pull fresh state themselves.
package signal

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription identifies one registered callback.
type Subscription struct {
	ID  string
	hub *Hub
}

// Cancel removes the callback from its hub. Safe to call more than once
// and on the zero value.
func (s Subscription) Cancel() {
	if s.hub != nil {
		s.hub.Unsubscribe(s.ID)
	}
}

// Hub is a set of callbacks notified on Publish.
//
// Callbacks run synchronously on the publishing goroutine, in
// registration order, outside the hub's lock, so a callback may
// subscribe or unsubscribe.
type Hub struct {
	mu        sync.Mutex
	order     []string
	callbacks map[string]func()
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{callbacks: make(map[string]func())}
}

// Subscribe registers fn and returns its subscription. IDs are UUIDv7 so
// they sort by registration time in logs.
func (h *Hub) Subscribe(fn func()) Subscription {
	id := uuid.Must(uuid.NewV7()).String()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks[id] = fn
	h.order = append(h.order, id)
	return Subscription{ID: id, hub: h}
}

// Unsubscribe removes a callback by id.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.callbacks[id]; !ok {
		return
	}
	delete(h.callbacks, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered callbacks.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.callbacks)
}

// Publish invokes every callback registered at the time of the call.
func (h *Hub) Publish() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.callbacks[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Clear drops every callback.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order = nil
	h.callbacks = make(map[string]func())
}
