package ws

import (
	"fmt"
	"log"
	"sync"
)

func SessionRoom(sessionID uint) string {
	return fmt.Sprintf("session:%d", sessionID)
}

func SessionRoleRoom(sessionID uint, role string) string {
	return fmt.Sprintf("session:%d:role:%s", sessionID, role)
}

func RoleRoom(role string) string {
	return fmt.Sprintf("role:%s", role)
}

// Hub indexes clients by room for scoped broadcast. Delivery is
// best-effort: a failed send closes and drops that client only.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Join adds the client to all of its rooms.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range c.Rooms() {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*Client]bool)
		}
		h.rooms[room][c] = true
	}
	log.Printf("ws: %s joined rooms %v", c.Name, c.Rooms())
}

// Leave removes the client from all rooms. Idempotent.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range c.Rooms() {
		if clients, ok := h.rooms[room]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// Broadcast delivers the event to every client currently in the room.
func (h *Hub) Broadcast(room string, evt Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.Send(evt); err != nil {
			log.Printf("ws: send to %s failed: %v", c.Name, err)
			c.Close()
			h.Leave(c)
		}
	}
}

// RoomSize reports how many clients are currently in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
