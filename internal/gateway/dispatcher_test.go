package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/hikari-games/foxden-server/internal/dependencies/mocks"
	"github.com/hikari-games/foxden-server/internal/protocol"
	"github.com/hikari-games/foxden-server/internal/services/auth"
	"github.com/hikari-games/foxden-server/internal/services/gamestate"
	"github.com/hikari-games/foxden-server/internal/services/history"
	"github.com/hikari-games/foxden-server/internal/services/presence"
	"github.com/hikari-games/foxden-server/internal/storage/memory"
	"github.com/hikari-games/foxden-server/internal/testutil"
)

// fakeConn is an in-memory connection capturing everything sent to it
type fakeConn struct {
	id         uuid.UUID
	sent       [][]byte
	closeCount int
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.New()}
}

func (c *fakeConn) ID() uuid.UUID    { return c.id }
func (c *fakeConn) Send(data []byte) { c.sent = append(c.sent, data) }
func (c *fakeConn) Close()           { c.closeCount++ }

// messagesOfType decodes every captured frame with the given type
func (c *fakeConn) messagesOfType(msgType string) []json.RawMessage {
	var out []json.RawMessage
	for _, data := range c.sent {
		var envelope struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Type == msgType {
			out = append(out, data)
		}
	}
	return out
}

func (c *fakeConn) lastOfType(msgType string) (json.RawMessage, bool) {
	msgs := c.messagesOfType(msgType)
	if len(msgs) == 0 {
		return nil, false
	}
	return msgs[len(msgs)-1], true
}

type DispatcherSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	auth       *auth.Service
	presence   *presence.Table
	history    *history.Log
	dispatcher *Dispatcher
	ctx        context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.auth = auth.New(s.storage, s.clock, auth.DefaultConfig(), logger)
	s.presence = presence.NewTable(logger)
	s.history = history.NewLog(3)

	s.dispatcher = NewDispatcher(Config{
		Auth:      s.auth,
		Presence:  s.presence,
		History:   s.history,
		GameState: gamestate.New(s.storage, s.clock, logger),
		Clock:     s.clock,
		Random:    s.random,
		Logger:    logger,
	})
	s.ctx = context.Background()
}

// connect creates a fresh unauthenticated connection
func (s *DispatcherSuite) connect() (*fakeConn, *Session) {
	conn := newFakeConn()
	return conn, NewSession(conn)
}

func (s *DispatcherSuite) handle(sess *Session, frame string) {
	s.dispatcher.HandleMessage(s.ctx, sess, []byte(frame))
}

// register creates an account directly through the service
func (s *DispatcherSuite) register(username, nickname, password string) {
	s.Require().NoError(s.auth.Register(s.ctx, username, nickname, password))
}

// login authenticates a fresh connection with credentials
func (s *DispatcherSuite) login(username, password string) (*fakeConn, *Session) {
	conn, sess := s.connect()
	s.handle(sess, fmt.Sprintf(`{"type":"login","username":%q,"password":%q}`, username, password))
	s.Require().True(sess.Authenticated(), "login failed for %s", username)
	return conn, sess
}

// Registration

func (s *DispatcherSuite) TestRegisterSucceeds() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"register","username":"alice_01","nickname":"Alice","password":"password123"}`)

	raw, ok := conn.lastOfType(protocol.TypeRegisterResult)
	s.Require().True(ok)

	var result protocol.RegisterResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.True(result.Success)

	// Registration does not authenticate the connection
	s.False(sess.Authenticated())
}

func (s *DispatcherSuite) TestRegisterDuplicateUsername() {
	s.register("alice_01", "Alice", "password123")

	conn, sess := s.connect()
	s.handle(sess, `{"type":"register","username":"alice_01","nickname":"Alice2","password":"password456"}`)

	raw, _ := conn.lastOfType(protocol.TypeRegisterResult)
	var result protocol.RegisterResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.False(result.Success)
	s.Equal("username already registered", result.Error)
}

func (s *DispatcherSuite) TestRegisterInvalidUsername() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"register","username":"a b","nickname":"Alice","password":"password123"}`)

	raw, _ := conn.lastOfType(protocol.TypeRegisterResult)
	var result protocol.RegisterResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.False(result.Success)
	s.NotEmpty(result.Error)
}

// Login

func (s *DispatcherSuite) TestLoginSucceeds() {
	s.register("alice_01", "Alice", "password123")

	conn, sess := s.connect()
	s.handle(sess, `{"type":"login","username":"alice_01","password":"password123"}`)

	s.True(sess.Authenticated())

	raw, ok := conn.lastOfType(protocol.TypeLoginResult)
	s.Require().True(ok)
	var result protocol.LoginResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.True(result.Success)
	s.Equal("Alice", result.Nickname)
	s.NotEmpty(result.SessionID)

	// A fresh account has nothing persisted yet
	s.Nil(result.UserData)
	s.Nil(result.OfflineRewards)

	// The new connection gets history and a presence snapshot
	s.Len(conn.messagesOfType(protocol.TypeHistory), 1)
	s.Len(conn.messagesOfType(protocol.TypeOnlineUsers), 1)
}

func (s *DispatcherSuite) TestLoginWrongPassword() {
	s.register("alice_01", "Alice", "password123")

	conn, sess := s.connect()
	s.handle(sess, `{"type":"login","username":"alice_01","password":"wrongpass"}`)

	s.False(sess.Authenticated())
	raw, _ := conn.lastOfType(protocol.TypeLoginResult)
	var result protocol.LoginResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.False(result.Success)
	s.Equal("incorrect password", result.Error)
}

func (s *DispatcherSuite) TestLoginUnknownUsername() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"login","username":"nobody_1","password":"password123"}`)

	raw, _ := conn.lastOfType(protocol.TypeLoginResult)
	var result protocol.LoginResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.Equal("username does not exist", result.Error)
}

func (s *DispatcherSuite) TestLoginFailureAllowsRetry() {
	s.register("alice_01", "Alice", "password123")

	_, sess := s.connect()
	s.handle(sess, `{"type":"login","username":"alice_01","password":"wrongpass"}`)
	s.False(sess.Authenticated())

	s.handle(sess, `{"type":"login","username":"alice_01","password":"password123"}`)
	s.True(sess.Authenticated())
}

// Guest login

func (s *DispatcherSuite) TestGuestLoginSynthesizesIdentity() {
	s.random.QueueIntn(123456)

	conn, sess := s.connect()
	s.handle(sess, `{"type":"guest_login"}`)

	s.True(sess.Authenticated())

	raw, _ := conn.lastOfType(protocol.TypeGuestLoginResult)
	var result protocol.GuestLoginResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.True(result.Success)
	s.Equal("GUEST-123456", result.GuestID)
	s.Equal("Guest23456", result.Nickname)
}

func (s *DispatcherSuite) TestGuestLoginKeepsSuppliedGuestID() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"guest_login","guestId":"GUEST-654321","nickname":"Foxy"}`)

	raw, _ := conn.lastOfType(protocol.TypeGuestLoginResult)
	var result protocol.GuestLoginResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.Equal("GUEST-654321", result.GuestID)
	s.Equal("Foxy", result.Nickname)
}

func (s *DispatcherSuite) TestGuestLoginRejectsSpoofedIdentity() {
	// An ID outside the guest namespace is replaced, not honored
	s.random.QueueIntn(42)

	conn, sess := s.connect()
	s.handle(sess, `{"type":"guest_login","guestId":"alice_01"}`)

	raw, _ := conn.lastOfType(protocol.TypeGuestLoginResult)
	var result protocol.GuestLoginResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.Equal("GUEST-000042", result.GuestID)
}

func (s *DispatcherSuite) TestGuestSaveIsRefused() {
	_, sess := s.connect()
	s.handle(sess, `{"type":"guest_login","guestId":"GUEST-111111"}`)
	conn := sess.conn.(*fakeConn)

	s.handle(sess, `{"type":"save_game","gameState":{"sunlight":5}}`)

	raw, _ := conn.lastOfType(protocol.TypeSaveResult)
	var result protocol.SaveResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.False(result.Success)
	s.Equal("guest data is not saved to the server", result.Message)
}

// Session resume

func (s *DispatcherSuite) TestSessionAuthSucceeds() {
	s.register("alice_01", "Alice", "password123")
	conn1, _ := s.login("alice_01", "password123")

	raw, _ := conn1.lastOfType(protocol.TypeLoginResult)
	var loginResult protocol.LoginResult
	s.Require().NoError(json.Unmarshal(raw, &loginResult))

	conn2, sess2 := s.connect()
	s.handle(sess2, fmt.Sprintf(`{"type":"session_auth","sessionId":%q}`, loginResult.SessionID))

	s.True(sess2.Authenticated())
	raw, _ = conn2.lastOfType(protocol.TypeSessionAuthResult)
	var result protocol.SessionAuthResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.True(result.Success)
	s.Equal("Alice", result.Nickname)
}

func (s *DispatcherSuite) TestSessionAuthSameTokenEvictsEarlierResume() {
	s.register("alice_01", "Alice", "password123")
	loginConn, _ := s.login("alice_01", "password123")

	raw, _ := loginConn.lastOfType(protocol.TypeLoginResult)
	var loginResult protocol.LoginResult
	s.Require().NoError(json.Unmarshal(raw, &loginResult))

	// Two further connections resume with the same token in turn
	connA, sessA := s.connect()
	s.handle(sessA, fmt.Sprintf(`{"type":"session_auth","sessionId":%q}`, loginResult.SessionID))
	s.Require().True(sessA.Authenticated())

	connB, sessB := s.connect()
	s.handle(sessB, fmt.Sprintf(`{"type":"session_auth","sessionId":%q}`, loginResult.SessionID))
	s.Require().True(sessB.Authenticated())

	// The earlier resume is told exactly once and closed; the newest is not
	s.Len(connA.messagesOfType(protocol.TypeForceLogout), 1)
	s.Equal(1, connA.closeCount)
	s.Empty(connB.messagesOfType(protocol.TypeForceLogout))
	s.Equal(0, connB.closeCount)

	// Exactly one presence entry, held by the newest connection
	s.Equal(1, s.presence.Count())
	entry, ok := s.presence.Get("alice_01")
	s.Require().True(ok)
	s.Equal(connB.ID(), entry.Conn.ID())

	// The evicted connection's close handler must not release the entry
	s.dispatcher.HandleDisconnect(sessA)
	entry, ok = s.presence.Get("alice_01")
	s.Require().True(ok)
	s.Equal(connB.ID(), entry.Conn.ID())
}

func (s *DispatcherSuite) TestSessionAuthExpiredToken() {
	s.register("alice_01", "Alice", "password123")
	conn1, _ := s.login("alice_01", "password123")

	raw, _ := conn1.lastOfType(protocol.TypeLoginResult)
	var loginResult protocol.LoginResult
	s.Require().NoError(json.Unmarshal(raw, &loginResult))

	s.clock.Advance(25 * time.Hour)

	conn2, sess2 := s.connect()
	s.handle(sess2, fmt.Sprintf(`{"type":"session_auth","sessionId":%q}`, loginResult.SessionID))

	s.False(sess2.Authenticated())
	raw, _ = conn2.lastOfType(protocol.TypeSessionAuthResult)
	var result protocol.SessionAuthResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.False(result.Success)
	s.Equal("session expired, please log in again", result.Error)
}

func (s *DispatcherSuite) TestSessionAuthUnknownToken() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"session_auth","sessionId":"sess_bogus"}`)

	s.False(sess.Authenticated())
	_, ok := conn.lastOfType(protocol.TypeSessionAuthResult)
	s.True(ok)
}

// Presence and eviction

func (s *DispatcherSuite) TestSecondLoginEvictsFirstConnection() {
	s.register("alice_01", "Alice", "password123")

	conn1, _ := s.login("alice_01", "password123")
	conn2, _ := s.login("alice_01", "password123")

	// Exactly one force_logout, then the connection is closed
	forceLogouts := conn1.messagesOfType(protocol.TypeForceLogout)
	s.Require().Len(forceLogouts, 1)
	var fl protocol.ForceLogout
	s.Require().NoError(json.Unmarshal(forceLogouts[0], &fl))
	s.Equal(ForceLogoutReason, fl.Reason)
	s.Equal(1, conn1.closeCount)

	// The new connection is not notified of anything
	s.Empty(conn2.messagesOfType(protocol.TypeForceLogout))
	s.Equal(1, s.presence.Count())
}

func (s *DispatcherSuite) TestEvictedDisconnectKeepsNewConnectionOnline() {
	s.register("alice_01", "Alice", "password123")

	_, sess1 := s.login("alice_01", "password123")
	conn2, _ := s.login("alice_01", "password123")

	// The evicted connection's close handler fires afterwards
	s.dispatcher.HandleDisconnect(sess1)

	entry, ok := s.presence.Get("alice_01")
	s.Require().True(ok)
	s.Equal(conn2.ID(), entry.Conn.ID())
}

func (s *DispatcherSuite) TestDisconnectReleasesPresenceAndBroadcasts() {
	s.register("alice_01", "Alice", "password123")
	s.register("bobby_01", "Bobby", "password123")

	_, sess1 := s.login("alice_01", "password123")
	conn2, _ := s.login("bobby_01", "password123")

	before := len(conn2.messagesOfType(protocol.TypeOnlineUsers))
	s.dispatcher.HandleDisconnect(sess1)

	s.Equal(1, s.presence.Count())
	_, stillOnline := s.presence.Get("alice_01")
	s.False(stillOnline)

	// The survivor saw an updated presence snapshot
	after := conn2.messagesOfType(protocol.TypeOnlineUsers)
	s.Require().Len(after, before+1)
	var users protocol.OnlineUsers
	s.Require().NoError(json.Unmarshal(after[len(after)-1], &users))
	s.Len(users.Users, 1)
	s.Equal("bobby_01", users.Users[0].Username)
}

// Envelope handling

func (s *DispatcherSuite) TestUnauthenticatedRequestRejected() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"get_online_users"}`)

	raw, ok := conn.lastOfType(protocol.TypeError)
	s.Require().True(ok)
	var errMsg protocol.ErrorMessage
	s.Require().NoError(json.Unmarshal(raw, &errMsg))
	s.Equal("not authenticated", errMsg.Message)
}

func (s *DispatcherSuite) TestPingAllowedWithoutAuth() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"ping"}`)

	raw, ok := conn.lastOfType(protocol.TypePong)
	s.Require().True(ok)
	var pong protocol.Pong
	s.Require().NoError(json.Unmarshal(raw, &pong))
	s.Equal(s.clock.Now().UnixMilli(), pong.Timestamp)
}

func (s *DispatcherSuite) TestMalformedFrameKeepsConnectionUsable() {
	s.register("alice_01", "Alice", "password123")

	conn, sess := s.connect()
	s.handle(sess, `{not json`)

	raw, ok := conn.lastOfType(protocol.TypeError)
	s.Require().True(ok)
	var errMsg protocol.ErrorMessage
	s.Require().NoError(json.Unmarshal(raw, &errMsg))
	s.Equal("malformed message", errMsg.Message)
	s.Equal(0, conn.closeCount)

	// The connection still works
	s.handle(sess, `{"type":"login","username":"alice_01","password":"password123"}`)
	s.True(sess.Authenticated())
}

func (s *DispatcherSuite) TestUnknownTypeRejected() {
	conn, sess := s.connect()
	s.handle(sess, `{"type":"teleport"}`)

	raw, _ := conn.lastOfType(protocol.TypeError)
	var errMsg protocol.ErrorMessage
	s.Require().NoError(json.Unmarshal(raw, &errMsg))
	s.Equal("unknown message type", errMsg.Message)
}

// Game state

func (s *DispatcherSuite) TestSaveGamePersistsState() {
	s.register("alice_01", "Alice", "password123")
	conn, sess := s.login("alice_01", "password123")

	s.handle(sess, `{"type":"save_game","gameState":{"sunlight":55,"bogus":1}}`)

	raw, _ := conn.lastOfType(protocol.TypeSaveResult)
	var result protocol.SaveResult
	s.Require().NoError(json.Unmarshal(raw, &result))
	s.True(result.Success)

	data, err := s.storage.GetUserData(s.ctx, "alice_01")
	s.Require().NoError(err)
	s.Equal(55.0, data.GameState.Sunlight)
}

func (s *DispatcherSuite) TestLoginAfterSaveReturnsStateAndRewards() {
	s.register("alice_01", "Alice", "password123")
	_, sess := s.login("alice_01", "password123")
	s.handle(sess, `{"type":"save_game","gameState":{"sunlight":55}}`)
	s.dispatcher.HandleDisconnect(sess)

	s.clock.Advance(5 * time.Hour)

	conn, _ := s.login("alice_01", "password123")
	raw, _ := conn.lastOfType(protocol.TypeLoginResult)
	var result protocol.LoginResult
	s.Require().NoError(json.Unmarshal(raw, &result))

	s.Require().NotNil(result.UserData)
	s.Equal(55.0, result.UserData.GameState.Sunlight)
	s.Require().NotNil(result.OfflineRewards)
	s.Equal(int64(100), result.OfflineRewards.Sunlight)
	s.Equal(int64(100), result.OfflineRewards.Starlight)
}

func (s *DispatcherSuite) TestShareGameStateEchoes() {
	s.register("alice_01", "Alice", "password123")
	conn, sess := s.login("alice_01", "password123")

	s.handle(sess, `{"type":"share_game_state","state":{"sunlight":9}}`)

	raw, ok := conn.lastOfType(protocol.TypeGameStateResponse)
	s.Require().True(ok)
	var resp protocol.GameStateResponse
	s.Require().NoError(json.Unmarshal(raw, &resp))
	s.JSONEq(`{"sunlight":9}`, string(resp.State))
}

// Community sharing

func (s *DispatcherSuite) TestShareLocationBroadcastsToEveryone() {
	s.register("alice_01", "Alice", "password123")
	s.register("bobby_01", "Bobby", "password123")

	conn1, sess1 := s.login("alice_01", "password123")
	conn2, _ := s.login("bobby_01", "password123")

	s.handle(sess1, `{"type":"share_location","location":"forest"}`)

	for _, conn := range []*fakeConn{conn1, conn2} {
		shares := conn.messagesOfType(protocol.TypeShareLocation)
		s.Require().Len(shares, 1)

		var event map[string]any
		s.Require().NoError(json.Unmarshal(shares[0], &event))
		s.Equal("forest", event["location"])
		// Server stamps its own timestamp
		s.EqualValues(s.clock.Now().UnixMilli(), event["timestamp"])
	}

	s.Equal(1, s.history.Len())
}

func (s *DispatcherSuite) TestHistoryReplayedToNewConnections() {
	s.register("alice_01", "Alice", "password123")
	s.register("bobby_01", "Bobby", "password123")

	_, sess1 := s.login("alice_01", "password123")
	s.handle(sess1, `{"type":"share_location","location":"forest"}`)
	s.handle(sess1, `{"type":"share_location","location":"lake"}`)

	conn2, _ := s.login("bobby_01", "password123")

	raw, ok := conn2.lastOfType(protocol.TypeHistory)
	s.Require().True(ok)
	var hist protocol.History
	s.Require().NoError(json.Unmarshal(raw, &hist))
	s.Require().Len(hist.Data, 2)

	var first map[string]any
	s.Require().NoError(json.Unmarshal(hist.Data[0], &first))
	s.Equal("forest", first["location"])
}

func (s *DispatcherSuite) TestHistoryBounded() {
	s.register("alice_01", "Alice", "password123")
	_, sess := s.login("alice_01", "password123")

	for i := 0; i < 5; i++ {
		s.handle(sess, fmt.Sprintf(`{"type":"share_location","location":"spot%d"}`, i))
	}

	// Capacity is 3 in this suite
	s.Equal(3, s.history.Len())
	var oldest map[string]any
	s.Require().NoError(json.Unmarshal(s.history.Snapshot()[0], &oldest))
	s.Equal("spot2", oldest["location"])
}

// Directed social events

func (s *DispatcherSuite) TestVisitUserNotifiesTarget() {
	s.register("alice_01", "Alice", "password123")
	s.register("bobby_01", "Bobby", "password123")

	_, sess1 := s.login("alice_01", "password123")
	conn2, _ := s.login("bobby_01", "password123")

	s.handle(sess1, `{"type":"visit_user","targetUsername":"bobby_01"}`)

	raw, ok := conn2.lastOfType(protocol.TypeVisitorNotification)
	s.Require().True(ok)
	var notif protocol.VisitorNotification
	s.Require().NoError(json.Unmarshal(raw, &notif))
	s.Equal("alice_01", notif.Visitor.Username)
	s.Equal("Alice", notif.Visitor.Nickname)
}

func (s *DispatcherSuite) TestVisitOfflineUserIsSilentlyDropped() {
	s.register("alice_01", "Alice", "password123")
	conn, sess := s.login("alice_01", "password123")

	before := len(conn.sent)
	s.handle(sess, `{"type":"visit_user","targetUsername":"nobody_1"}`)

	// No error and no reply
	s.Len(conn.sent, before)
}

func (s *DispatcherSuite) TestSendGiftForwardsPayload() {
	s.register("alice_01", "Alice", "password123")
	s.register("bobby_01", "Bobby", "password123")

	_, sess1 := s.login("alice_01", "password123")
	conn2, _ := s.login("bobby_01", "password123")

	s.handle(sess1, `{"type":"send_gift","targetUsername":"bobby_01","gift":{"item":"acorn","qty":3}}`)

	raw, ok := conn2.lastOfType(protocol.TypeReceiveGift)
	s.Require().True(ok)
	var gift protocol.ReceiveGift
	s.Require().NoError(json.Unmarshal(raw, &gift))
	s.Equal("alice_01", gift.From.Username)
	s.JSONEq(`{"item":"acorn","qty":3}`, string(gift.Gift))
}

func (s *DispatcherSuite) TestFriendRequestAndAccept() {
	s.register("alice_01", "Alice", "password123")
	s.register("bobby_01", "Bobby", "password123")

	conn1, sess1 := s.login("alice_01", "password123")
	conn2, sess2 := s.login("bobby_01", "password123")

	s.handle(sess1, `{"type":"friend_request","targetUsername":"bobby_01"}`)

	raw, ok := conn2.lastOfType(protocol.TypeFriendRequest)
	s.Require().True(ok)
	var fr protocol.FriendRequest
	s.Require().NoError(json.Unmarshal(raw, &fr))
	s.Equal("alice_01", fr.From.Username)

	s.handle(sess2, `{"type":"friend_accept","targetUsername":"alice_01"}`)

	raw, ok = conn1.lastOfType(protocol.TypeFriendAccepted)
	s.Require().True(ok)
	var fa protocol.FriendAccepted
	s.Require().NoError(json.Unmarshal(raw, &fa))
	s.Equal("bobby_01", fa.Friend.Username)
}

// Online users

func (s *DispatcherSuite) TestGetOnlineUsersListsEveryone() {
	s.register("alice_01", "Alice", "password123")

	conn1, sess1 := s.login("alice_01", "password123")
	_, sess2 := s.connect()
	s.handle(sess2, `{"type":"guest_login","guestId":"GUEST-222222","nickname":"Foxy"}`)

	s.handle(sess1, `{"type":"get_online_users"}`)

	raw, _ := conn1.lastOfType(protocol.TypeOnlineUsers)
	var users protocol.OnlineUsers
	s.Require().NoError(json.Unmarshal(raw, &users))
	s.Require().Len(users.Users, 2)

	byName := map[string]protocol.UserSummary{}
	for _, u := range users.Users {
		byName[u.Username] = u
	}
	s.False(byName["alice_01"].IsGuest)
	s.True(byName["GUEST-222222"].IsGuest)
}
