// Package protocol defines the envelope format exchanged over the
// websocket channel. Every message is a single JSON document with a
// "type" discriminator; unknown fields are ignored by receivers.
package protocol

import (
	"encoding/json"

	"github.com/hikari-games/foxden-server/internal/model"
)

// Request type discriminators
const (
	TypeRegister       = "register"
	TypeLogin          = "login"
	TypeGuestLogin     = "guest_login"
	TypeSessionAuth    = "session_auth"
	TypeSaveGame       = "save_game"
	TypeShareLocation  = "share_location"
	TypeGetOnlineUsers = "get_online_users"
	TypeVisitUser      = "visit_user"
	TypeShareGameState = "share_game_state"
	TypeFriendRequest  = "friend_request"
	TypeFriendAccept   = "friend_accept"
	TypeSendGift       = "send_gift"
	TypePing           = "ping"
)

// Reply type discriminators
const (
	TypeRegisterResult      = "register_result"
	TypeLoginResult         = "login_result"
	TypeGuestLoginResult    = "guest_login_result"
	TypeSessionAuthResult   = "session_auth_result"
	TypeSaveResult          = "save_result"
	TypeHistory             = "history"
	TypeOnlineUsers         = "online_users"
	TypeVisitorNotification = "visitor_notification"
	TypeFriendAccepted      = "friend_accepted"
	TypeReceiveGift         = "receive_gift"
	TypeGameStateResponse   = "game_state_response"
	TypeForceLogout         = "force_logout"
	TypePong                = "pong"
	TypeError               = "error"
)

// Request is the loosely decoded inbound envelope. Only the fields
// relevant to the message type are populated; everything else is left at
// its zero value. Raw carries the original frame for handlers that
// rebroadcast client-shaped payloads.
type Request struct {
	Type           string          `json:"type"`
	Username       string          `json:"username"`
	Nickname       string          `json:"nickname"`
	Password       string          `json:"password"`
	SessionID      string          `json:"sessionId"`
	GuestID        string          `json:"guestId"`
	GameState      json.RawMessage `json:"gameState"`
	TargetUsername string          `json:"targetUsername"`
	Gift           json.RawMessage `json:"gift"`
	State          json.RawMessage `json:"state"`

	Raw json.RawMessage `json:"-"`
}

// DecodeRequest parses one inbound frame
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	req.Raw = append(json.RawMessage(nil), data...)
	return &req, nil
}

// UserSummary is the per-user presence record shared in user lists and
// directed social events
type UserSummary struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	IsGuest  bool   `json:"isGuest"`
}

// RegisterResult replies to a register request
type RegisterResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// LoginResult replies to a credential login
type LoginResult struct {
	Type           string               `json:"type"`
	Success        bool                 `json:"success"`
	SessionID      string               `json:"sessionId,omitempty"`
	Nickname       string               `json:"nickname,omitempty"`
	UserData       *model.UserData      `json:"userData,omitempty"`
	OfflineRewards *model.OfflineReward `json:"offlineRewards,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// GuestLoginResult replies to a guest login
type GuestLoginResult struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	GuestID  string `json:"guestId"`
	Nickname string `json:"nickname"`
}

// SessionAuthResult replies to a session resume
type SessionAuthResult struct {
	Type           string               `json:"type"`
	Success        bool                 `json:"success"`
	Nickname       string               `json:"nickname,omitempty"`
	UserData       *model.UserData      `json:"userData,omitempty"`
	OfflineRewards *model.OfflineReward `json:"offlineRewards,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// SaveResult replies to a save_game request
type SaveResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// History replays recent community share events to a new connection
type History struct {
	Type string            `json:"type"`
	Data []json.RawMessage `json:"data"`
}

// OnlineUsers carries a presence snapshot
type OnlineUsers struct {
	Type  string        `json:"type"`
	Users []UserSummary `json:"users"`
}

// VisitorNotification tells a user someone visited them
type VisitorNotification struct {
	Type    string      `json:"type"`
	Visitor UserSummary `json:"visitor"`
}

// FriendRequest forwards a friend request to its target
type FriendRequest struct {
	Type string      `json:"type"`
	From UserSummary `json:"from"`
}

// FriendAccepted tells the original requester their request was accepted
type FriendAccepted struct {
	Type   string      `json:"type"`
	Friend UserSummary `json:"friend"`
}

// ReceiveGift forwards a gift to its target
type ReceiveGift struct {
	Type string          `json:"type"`
	From UserSummary     `json:"from"`
	Gift json.RawMessage `json:"gift"`
}

// GameStateResponse echoes a shared game state back to the sender
type GameStateResponse struct {
	Type  string          `json:"type"`
	State json.RawMessage `json:"state"`
}

// ForceLogout tells a connection it is being evicted because the same
// account authenticated elsewhere
type ForceLogout struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Pong replies to a ping
type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorMessage is the generic failure envelope
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Encode marshals an outbound envelope. Marshal failures are programmer
// errors on our own types, so the error is surfaced rather than ignored.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
