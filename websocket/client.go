package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"collabcanvas/protocol"
)

const (
	defaultDialTimeout       = 10 * time.Second
	defaultReconnectAttempts = 5
	defaultReconnectBackoff  = 2 * time.Second
)

// ClientConfig configures the client transport. Zero values take the
// defaults above.
type ClientConfig struct {
	URL               string
	DialTimeout       time.Duration
	ReconnectAttempts int
	ReconnectBackoff  time.Duration
}

// Client is the client side of the relay transport. Sends are
// fire-and-forget: an operation emitted while disconnected is dropped
// without error, never queued. After a connection drop the client retries
// a bounded number of times with fixed backoff, then settles into a
// disconnected state; local drawing continues unsynchronized.
type Client struct {
	cfg    ClientConfig
	events chan any

	mu        sync.Mutex
	ws        *websocket.Conn
	connected bool
	closed    bool
	retrying  bool
	room      string

	closeEvents sync.Once
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReconnectAttempts <= 0 {
		cfg.ReconnectAttempts = defaultReconnectAttempts
	}
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = defaultReconnectBackoff
	}
	return &Client{
		cfg:    cfg,
		events: make(chan any, 256),
	}
}

// Connect dials the relay and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	ws, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	c.ws = ws
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(ws)
	return nil
}

// Join joins a room. The room is remembered and re-joined automatically
// after a successful reconnect.
func (c *Client) Join(roomID string) error {
	c.mu.Lock()
	c.room = roomID
	c.mu.Unlock()
	return c.Emit(protocol.JoinRoom{RoomID: roomID})
}

// Emit sends one operation. A marshal failure is an error; a transport
// failure is not: the operation is silently dropped and reconnection
// starts in the background.
func (c *Client) Emit(op any) error {
	frame, err := protocol.Marshal(op)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.dropConnLocked()
	}
	return nil
}

// Events delivers decoded incoming operations. Closed when the client is
// closed.
func (c *Client) Events() <-chan any {
	return c.events
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.connected = false
	ws := c.ws
	c.mu.Unlock()

	c.closeEvents.Do(func() { close(c.events) })
	if ws != nil {
		return ws.Close()
	}
	return nil
}

func (c *Client) readLoop(ws *websocket.Conn) {
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			if c.ws == ws {
				c.dropConnLocked()
			}
			c.mu.Unlock()
			if !closed {
				slog.Debug("read loop ended", "error", err)
			}
			return
		}

		op, err := protocol.Decode(frame)
		if err != nil {
			slog.Debug("skipping frame", "error", err)
			continue
		}

		// The closed check and the send stay under one lock: Close marks
		// closed under the same lock before closing the channel, so a
		// frame can never land on a closed channel. The send is
		// non-blocking, so holding the lock here never stalls.
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		select {
		case c.events <- op:
		default:
			// Slow consumer; drop rather than stall the transport.
		}
		c.mu.Unlock()
	}
}

// dropConnLocked marks the transport down and kicks off reconnection.
// Caller holds c.mu.
func (c *Client) dropConnLocked() {
	if !c.connected {
		return
	}
	c.connected = false
	c.ws.Close()
	if !c.closed && !c.retrying {
		c.retrying = true
		go c.reconnect()
	}
}

// reconnect retries with fixed backoff up to the configured bound, then
// gives up and leaves the client disconnected.
func (c *Client) reconnect() {
	defer func() {
		c.mu.Lock()
		c.retrying = false
		c.mu.Unlock()
	}()

	for attempt := 1; attempt <= c.cfg.ReconnectAttempts; attempt++ {
		time.Sleep(c.cfg.ReconnectBackoff)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		room := c.room
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DialTimeout)
		err := c.Connect(ctx)
		cancel()
		if err != nil {
			slog.Warn("reconnect failed", "attempt", attempt, "error", err)
			continue
		}

		slog.Info("reconnected", "attempt", attempt)
		if room != "" {
			c.Emit(protocol.JoinRoom{RoomID: room})
		}
		return
	}

	slog.Warn("reconnect attempts exhausted", "attempts", c.cfg.ReconnectAttempts)
}
