// Package gateway is the websocket-facing message router: it parses
// inbound envelopes, enforces per-connection authentication state, and
// routes replies, broadcasts and directed events between users.
package gateway

import (
	"context"
	"log/slog"

	"github.com/hikari-games/foxden-server/internal/dependencies/clock"
	"github.com/hikari-games/foxden-server/internal/dependencies/random"
	"github.com/hikari-games/foxden-server/internal/protocol"
	"github.com/hikari-games/foxden-server/internal/services/auth"
	"github.com/hikari-games/foxden-server/internal/services/gamestate"
	"github.com/hikari-games/foxden-server/internal/services/history"
	"github.com/hikari-games/foxden-server/internal/services/presence"
)

// Dispatcher routes inbound envelopes to their handlers. One dispatcher
// serves all connections; per-connection state lives in Session.
type Dispatcher struct {
	auth      *auth.Service
	presence  *presence.Table
	history   *history.Log
	gamestate *gamestate.Service
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	handlers map[string]handlerEntry
}

// handlerEntry pairs a handler with its authentication precondition
type handlerEntry struct {
	requiresAuth bool
	handle       func(ctx context.Context, sess *Session, req *protocol.Request)
}

// Config holds the dispatcher's collaborators
type Config struct {
	Auth      *auth.Service
	Presence  *presence.Table
	History   *history.Log
	GameState *gamestate.Service
	Clock     clock.Clock
	Random    random.Random
	Logger    *slog.Logger
}

// NewDispatcher creates a dispatcher with its routing table
func NewDispatcher(cfg Config) *Dispatcher {
	d := &Dispatcher{
		auth:      cfg.Auth,
		presence:  cfg.Presence,
		history:   cfg.History,
		gamestate: cfg.GameState,
		clock:     cfg.Clock,
		random:    cfg.Random,
		logger:    cfg.Logger.With(slog.String("component", "gateway")),
	}

	d.handlers = map[string]handlerEntry{
		protocol.TypeRegister:       {false, d.handleRegister},
		protocol.TypeLogin:          {false, d.handleLogin},
		protocol.TypeGuestLogin:     {false, d.handleGuestLogin},
		protocol.TypeSessionAuth:    {false, d.handleSessionAuth},
		protocol.TypePing:           {false, d.handlePing},
		protocol.TypeSaveGame:       {true, d.handleSaveGame},
		protocol.TypeShareLocation:  {true, d.handleShareLocation},
		protocol.TypeGetOnlineUsers: {true, d.handleGetOnlineUsers},
		protocol.TypeVisitUser:      {true, d.handleVisitUser},
		protocol.TypeShareGameState: {true, d.handleShareGameState},
		protocol.TypeFriendRequest:  {true, d.handleFriendRequest},
		protocol.TypeFriendAccept:   {true, d.handleFriendAccept},
		protocol.TypeSendGift:       {true, d.handleSendGift},
	}

	return d
}

// HandleMessage processes one inbound frame for a connection. Malformed
// and unknown envelopes get a generic error reply; they never close the
// connection or affect other connections.
func (d *Dispatcher) HandleMessage(ctx context.Context, sess *Session, data []byte) {
	req, err := protocol.DecodeRequest(data)
	if err != nil {
		d.logger.Warn("malformed envelope", slog.String("error", err.Error()))
		d.send(sess, protocol.ErrorMessage{Type: protocol.TypeError, Message: "malformed message"})
		return
	}

	entry, ok := d.handlers[req.Type]
	if !ok {
		d.send(sess, protocol.ErrorMessage{Type: protocol.TypeError, Message: "unknown message type"})
		return
	}

	if entry.requiresAuth && !sess.Authenticated() {
		d.send(sess, protocol.ErrorMessage{Type: protocol.TypeError, Message: "not authenticated"})
		return
	}

	entry.handle(ctx, sess, req)
}

// HandleDisconnect releases held presence (if the handle still matches)
// and broadcasts the updated online list. Sessions in the registry are
// left alone so the user can resume without re-entering credentials.
func (d *Dispatcher) HandleDisconnect(sess *Session) {
	if sess.Authenticated() {
		if d.presence.Release(sess.username, sess.conn.ID()) {
			d.broadcastOnlineUsers()
		}
	}
	sess.close()
}

// send encodes and queues one envelope for a single connection
func (d *Dispatcher) send(sess *Session, v any) {
	d.sendTo(sess.conn, v)
}

func (d *Dispatcher) sendTo(conn presence.Conn, v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		d.logger.Error("encode failed", slog.String("error", err.Error()))
		return
	}
	conn.Send(data)
}

// broadcast sends raw data to every online user
func (d *Dispatcher) broadcast(data []byte) {
	for _, entry := range d.presence.List() {
		entry.Conn.Send(data)
	}
}

// broadcastOnlineUsers pushes the current presence snapshot to everyone.
// Pushed on every claim and release, not only on demand.
func (d *Dispatcher) broadcastOnlineUsers() {
	msg := protocol.OnlineUsers{
		Type:  protocol.TypeOnlineUsers,
		Users: d.onlineUserList(),
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		d.logger.Error("encode failed", slog.String("error", err.Error()))
		return
	}
	d.broadcast(data)
}

func (d *Dispatcher) onlineUserList() []protocol.UserSummary {
	entries := d.presence.List()
	users := make([]protocol.UserSummary, 0, len(entries))
	for _, e := range entries {
		users = append(users, protocol.UserSummary{
			Username: e.Username,
			Nickname: e.Nickname,
			IsGuest:  e.IsGuest,
		})
	}
	return users
}
