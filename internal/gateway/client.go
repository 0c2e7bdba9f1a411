package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hikari-games/foxden-server/internal/services/presence"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period; must be less than pongWait
	pingPeriod = 30 * time.Second

	// Maximum inbound frame size; game-state documents can be large
	maxMessageSize = 256 * 1024

	// Outbound queue depth per connection
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // game clients connect from arbitrary origins
	},
}

// Client wraps one websocket connection and implements the presence.Conn
// capability (Send/Close) the rest of the system routes through.
type Client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

var _ presence.Conn = (*Client)(nil)

func newClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:     uuid.New(),
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
	}
}

// ID identifies this connection for the presence handle-match
func (c *Client) ID() uuid.UUID {
	return c.id
}

// Send queues one outbound envelope without blocking. Messages to a slow
// or already-closed connection are dropped.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("outbound buffer full, dropping message",
			slog.String("conn_id", c.id.String()))
	}
}

// Close flushes queued messages and closes the connection with a normal
// closure code. Safe to call more than once and concurrently with Send.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump reads frames and feeds them to the dispatcher in arrival
// order, which gives each connection its ordering guarantee
func (c *Client) readPump(d *Dispatcher, sess *Session) {
	defer func() {
		d.HandleDisconnect(sess)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		d.HandleMessage(context.Background(), sess, data)
	}
}

// writePump delivers queued envelopes and keeps the connection alive with
// pings. When the send channel is closed it drains what is buffered, then
// sends a close frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler upgrades HTTP requests to websocket connections and starts the
// per-connection pumps
func Handler(d *Dispatcher, logger *slog.Logger) http.HandlerFunc {
	logger = logger.With(slog.String("component", "gateway"))
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		client := newClient(conn, logger)
		sess := NewSession(client)

		logger.Info("client connected", slog.String("conn_id", client.id.String()))

		go client.writePump()
		go client.readPump(d, sess)
	}
}
