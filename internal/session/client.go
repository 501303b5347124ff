package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"codebuds/internal/models"
)

// Client is one websocket connection. Outbound frames are queued on a
// buffered channel drained by a single writer goroutine, so frames sent to
// the same client are delivered in send order (the sync-code handler relies
// on this for its language-before-code sequencing).
type Client struct {
	ID   string
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan models.WSFrame
	hook   func(models.WSFrame)
	closed bool
}

func NewClient(conn *websocket.Conn, buffer int) *Client {
	c := &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan models.WSFrame, buffer),
	}
	if conn != nil {
		go c.writePump()
	}
	return c
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.closed || c.conn == nil {
		return
	}
	select {
	case c.send <- frame:
	default:
		// Slow consumer; dropping beats blocking the hub. Last-write-wins
		// broadcasting already tolerates lost intermediate states.
	}
}

// Close stops the writer goroutine. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writePump() {
	for frame := range c.send {
		if err := c.conn.WriteJSON(frame); err != nil {
			break
		}
	}
	_ = c.conn.Close()
}
