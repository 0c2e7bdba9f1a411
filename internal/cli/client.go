package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hikari-games/foxden-server/internal/protocol"
)

// Client is a websocket client for the game server
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
}

// Dial connects to the server's websocket endpoint. An http(s) server URL
// is translated to the matching ws(s) scheme.
func Dial(serverURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	return &Client{conn: conn, timeout: 10 * time.Second}, nil
}

// Close shuts the connection down
func (c *Client) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// Send writes one request envelope
func (c *Client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WaitFor reads frames until one matches a wanted type, skipping
// unrelated broadcasts. A server error envelope fails the wait.
func (c *Client) WaitFor(types ...string) ([]byte, error) {
	deadline := time.Now().Add(c.timeout)
	_ = c.conn.SetReadDeadline(deadline)
	defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read failed: %w", err)
		}

		var envelope struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			continue
		}

		if envelope.Type == protocol.TypeError {
			return nil, fmt.Errorf("server error: %s", envelope.Message)
		}
		for _, t := range types {
			if envelope.Type == t {
				return data, nil
			}
		}
	}
}

// Call sends a request and decodes the first reply of the wanted type
func (c *Client) Call(req any, replyType string, result any) error {
	if err := c.Send(req); err != nil {
		return err
	}
	data, err := c.WaitFor(replyType)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

// Authenticate resumes a saved session on this connection
func (c *Client) Authenticate(token string) (*protocol.SessionAuthResult, error) {
	if token == "" {
		return nil, fmt.Errorf("no session token; run 'foxdenctl account login' first")
	}

	req := map[string]string{
		"type":      protocol.TypeSessionAuth,
		"sessionId": token,
	}
	var result protocol.SessionAuthResult
	if err := c.Call(req, protocol.TypeSessionAuthResult, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("session rejected: %s", result.Error)
	}
	return &result, nil
}
