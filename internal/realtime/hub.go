package realtime

import (
	"log"
	"sync"
)

// Conn is one live connection's send side. The websocket wrapper
// implements it; tests substitute fakes.
type Conn interface {
	Send(f Frame) error
}

// Subject is the mailbox key for a user. Customers and drivers share the
// same namespace, keyed by their own user id.
func Subject(userID string) string {
	return "driver_" + userID
}

// Hub is the registry of live connections grouped by subject. A subject
// may have zero, one, or many simultaneous connections (multiple
// devices); every member receives every frame published to the subject.
type Hub struct {
	mu     sync.RWMutex
	groups map[string][]Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{groups: make(map[string][]Conn)}
}

// Subscribe adds a connection to a subject's group.
func (h *Hub) Subscribe(subject string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groups[subject] = append(h.groups[subject], c)
}

// Unsubscribe removes a connection from a subject's group. Idempotent:
// removing a connection that already left is a no-op.
func (h *Hub) Unsubscribe(subject string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.groups[subject]
	for i, member := range conns {
		if member == c {
			h.groups[subject] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.groups[subject]) == 0 {
		delete(h.groups, subject)
	}
}

// Publish delivers a frame to every member of a subject's group.
// Best-effort: a failed send is logged and never blocks the others or
// the caller. Iteration happens over a snapshot so a concurrently
// closing connection cannot break delivery.
func (h *Hub) Publish(subject string, f Frame) {
	h.mu.RLock()
	conns := make([]Conn, len(h.groups[subject]))
	copy(conns, h.groups[subject])
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.Send(f); err != nil {
			log.Printf("[realtime] send to %s failed: %v", subject, err)
		}
	}
}

// Count returns how many connections a subject currently has.
func (h *Hub) Count(subject string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[subject])
}
