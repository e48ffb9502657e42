package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send and event channel buffers
	bufferSize = 256
)

// ErrClosed is returned by Send after the channel has shut down
var ErrClosed = errors.New("event channel closed")

// ConnState is the channel's explicit connection state
type ConnState string

const (
	StateConnecting ConnState = "connecting"
	StateOpen       ConnState = "open"
	StateClosed     ConnState = "closed"
)

// Channel is one duplex event connection to a room. Messages sent before
// the dial completes are queued and flushed on open rather than silently
// dropped; inbound frames that fail to parse are logged and skipped.
type Channel struct {
	url    string
	logger *slog.Logger

	mu      sync.Mutex
	state   ConnState
	conn    *websocket.Conn
	pending []Message

	send   chan []byte
	events chan Message
	done   chan struct{}

	closeOnce sync.Once
}

// NewChannel creates an unconnected channel for the given ws:// or wss://
// URL. Call Open to dial.
func NewChannel(url string, logger *slog.Logger) *Channel {
	return &Channel{
		url:    url,
		logger: logger,
		state:  StateConnecting,
		send:   make(chan []byte, bufferSize),
		events: make(chan Message, bufferSize),
		done:   make(chan struct{}),
	}
}

// State returns the current connection state
func (c *Channel) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open dials the backend and starts the read and write pumps. Any messages
// queued while connecting are flushed in order. A dial failure closes the
// channel and is surfaced to the caller.
func (c *Channel) Open(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.Close()
		return err
	}

	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.state = StateOpen
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, msg := range pending {
		if err := c.enqueue(msg); err != nil {
			return err
		}
	}

	go c.writePump()
	go c.readPump()

	c.logger.Debug("event channel open", "url", c.url)
	return nil
}

// Send marshals msg onto the channel. While connecting it queues; after
// close it returns ErrClosed.
func (c *Channel) Send(msg Message) error {
	c.mu.Lock()
	switch c.state {
	case StateConnecting:
		c.pending = append(c.pending, msg)
		c.mu.Unlock()
		return nil
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	return c.enqueue(msg)
}

func (c *Channel) enqueue(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "type", msg.Type)
		return nil
	}
}

// Events delivers inbound messages. The channel is closed when the
// connection shuts down.
func (c *Channel) Events() <-chan Message {
	return c.events
}

// Close tears the channel down. It is idempotent and safe to call from any
// state, including before Open and again on room-code change.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		conn := c.conn
		c.pending = nil
		c.mu.Unlock()

		close(c.done)
		if conn != nil {
			conn.Close()
		} else {
			// Never dialed, so no read pump will close events for us
			close(c.events)
		}
	})
	return nil
}

// readPump pumps inbound frames into the events channel
func (c *Channel) readPump() {
	defer func() {
		c.Close()
		close(c.events)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug("event channel read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("dropping malformed event", "error", err)
			continue
		}

		select {
		case c.events <- msg:
		case <-c.done:
			return
		default:
			c.logger.Warn("event buffer full, message dropped", "type", msg.Type)
		}
	}
}

// writePump pumps queued messages onto the connection and keeps the
// connection alive with pings.
func (c *Channel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("event channel write error", "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
