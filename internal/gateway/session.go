package gateway

import (
	"github.com/hikari-games/foxden-server/internal/protocol"
	"github.com/hikari-games/foxden-server/internal/services/presence"
)

// ConnState is the authentication state of one connection
type ConnState int

const (
	// StateUnauthenticated is the initial state; only auth envelopes
	// and ping are accepted
	StateUnauthenticated ConnState = iota
	// StateAuthenticated is reached by a successful register, login,
	// guest login or session resume
	StateAuthenticated
	// StateClosed is terminal, entered on disconnect or eviction
	StateClosed
)

// Session is the per-connection state machine. It is owned by the
// connection's read loop: all transitions happen on that one goroutine,
// so no locking is needed here.
type Session struct {
	conn  presence.Conn
	state ConnState

	// identity, valid once state == StateAuthenticated
	username     string
	nickname     string
	isGuest      bool
	sessionToken string
}

// NewSession starts the state machine for a fresh connection
func NewSession(conn presence.Conn) *Session {
	return &Session{conn: conn, state: StateUnauthenticated}
}

// Authenticated reports whether privileged envelopes are allowed
func (s *Session) Authenticated() bool {
	return s.state == StateAuthenticated
}

// authenticate transitions to the authenticated state with an identity
func (s *Session) authenticate(username, nickname string, isGuest bool, sessionToken string) {
	s.state = StateAuthenticated
	s.username = username
	s.nickname = nickname
	s.isGuest = isGuest
	s.sessionToken = sessionToken
}

// close marks the terminal state. Failed authentication attempts do not
// come through here; they leave the session unauthenticated for retry.
func (s *Session) close() {
	s.state = StateClosed
}

// summary is the identity fragment attached to directed social events
func (s *Session) summary() protocol.UserSummary {
	return protocol.UserSummary{
		Username: s.username,
		Nickname: s.nickname,
	}
}

// entry builds the presence entry for this session's identity
func (s *Session) entry() *presence.Entry {
	return &presence.Entry{
		Username: s.username,
		Nickname: s.nickname,
		IsGuest:  s.isGuest,
		Conn:     s.conn,
	}
}
