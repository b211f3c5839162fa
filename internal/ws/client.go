package ws

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Outbound queue depth per connection. A full queue means the peer
// cannot keep up and the connection gets evicted.
const sendQueueSize = 256

// Client pairs a connection with its outbound queue. The websocket
// library supports only one concurrent writer per connection, so every
// data frame funnels through the queue and a single pump goroutine.
type Client struct {
	conn Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(conn Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
}

// Enqueue queues a payload for the pump without blocking. False means
// the queue is full or already closed.
func (c *Client) Enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// CloseQueue lets the pump exit once the queued payloads drain. Safe to
// call more than once.
func (c *Client) CloseQueue() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump drains the queue until it closes or a write fails; onError
// fires once, for the write that failed. Must be the only goroutine
// writing data frames to the connection.
func (c *Client) WritePump(writeTimeout time.Duration, onError func(error)) {
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
	}
}

// WriteControl writes a control frame. The library allows control writes
// concurrently with the pump.
func (c *Client) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return c.conn.WriteControl(messageType, data, deadline)
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}
