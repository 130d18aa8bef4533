package ws

import (
	"log"
	"sync"
)

// Registry tracks the single live connection per user. It holds no
// business logic; callers that mean to evict a connection close it
// themselves before re-registering.
type Registry struct {
	mu      sync.RWMutex
	clients map[uint]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[uint]*Client)}
}

// Register stores the client as the live connection for its user.
// A previous entry for the same user is replaced, not closed.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.UserID] = c
	log.Printf("ws: registered %s (user %d, total %d)", c.Name, c.UserID, len(r.clients))
}

// Unregister removes the client if it is still the registered one.
// A stale disconnect racing a reconnect or kick must not evict the
// newer connection, so the instance is compared, not just the user id.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.clients[c.UserID]
	if !ok || current != c {
		return
	}
	delete(r.clients, c.UserID)
	log.Printf("ws: unregistered %s (user %d, total %d)", c.Name, c.UserID, len(r.clients))
}

func (r *Registry) Lookup(userID uint) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
