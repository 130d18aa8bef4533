package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is the transport surface the hub needs from a connection.
// *websocket.Conn satisfies it; tests substitute a fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is the live connection handle for one authenticated user.
// Identity fields are snapshotted at connect time and never change.
type Client struct {
	ID        string
	UserID    uint
	Name      string
	Role      string
	SessionID *uint

	conn    Conn
	writeMu sync.Mutex
	closed  bool
}

func NewClient(conn Conn, userID uint, name, role string, sessionID *uint) *Client {
	return &Client{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Role:      role,
		SessionID: sessionID,
		conn:      conn,
	}
}

// Rooms returns the broadcast scopes this client belongs to, computed
// from its identity. A client without a session joins only its role room.
func (c *Client) Rooms() []string {
	rooms := []string{RoleRoom(c.Role)}
	if c.SessionID != nil {
		rooms = append(rooms, SessionRoom(*c.SessionID), SessionRoleRoom(*c.SessionID, c.Role))
	}
	return rooms
}

func (c *Client) Send(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return fmt.Errorf("client %s is closed", c.ID)
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close shuts the underlying connection. Safe to call more than once.
func (c *Client) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
