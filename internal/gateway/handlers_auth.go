package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hikari-games/foxden-server/internal/model"
	"github.com/hikari-games/foxden-server/internal/protocol"
	"github.com/hikari-games/foxden-server/internal/services/auth"
)

// ForceLogoutReason is sent to a connection evicted by a newer login
const ForceLogoutReason = "your account logged in from another device"

func (d *Dispatcher) handleRegister(ctx context.Context, sess *Session, req *protocol.Request) {
	err := d.auth.Register(ctx, req.Username, req.Nickname, req.Password)

	result := protocol.RegisterResult{
		Type:    protocol.TypeRegisterResult,
		Success: err == nil,
	}
	if err != nil {
		result.Error = registerErrorText(err)
	}
	d.send(sess, result)
}

func registerErrorText(err error) string {
	switch {
	case auth.IsValidationError(err):
		return err.Error()
	case errors.Is(err, model.ErrUsernameTaken):
		return "username already registered"
	default:
		return "registration failed"
	}
}

func (d *Dispatcher) handleLogin(ctx context.Context, sess *Session, req *protocol.Request) {
	session, err := d.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		d.send(sess, protocol.LoginResult{
			Type:  protocol.TypeLoginResult,
			Error: loginErrorText(err),
		})
		return
	}

	sess.authenticate(session.Username, session.Nickname, false, session.Token)
	d.claimPresence(sess)

	userData, rewards := d.loadUserData(ctx, session.Username)

	d.send(sess, protocol.LoginResult{
		Type:           protocol.TypeLoginResult,
		Success:        true,
		SessionID:      session.Token,
		Nickname:       session.Nickname,
		UserData:       userData,
		OfflineRewards: rewards,
	})
	d.finishAuth(sess)
}

// loginErrorText intentionally distinguishes an unknown username from a
// wrong password, matching the messages the client displays. This leaks
// account existence; kept as observed behavior.
func loginErrorText(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidUsername):
		return err.Error()
	case errors.Is(err, model.ErrAccountNotFound):
		return "username does not exist"
	case errors.Is(err, model.ErrBadPassword):
		return "incorrect password"
	default:
		return "login failed"
	}
}

func (d *Dispatcher) handleGuestLogin(ctx context.Context, sess *Session, req *protocol.Request) {
	guestID := req.GuestID
	if guestID == "" || !model.IsGuestUsername(guestID) {
		// Synthesize an identity in the reserved guest namespace so it
		// can never shadow a registered username
		guestID = fmt.Sprintf("%s%06d", model.GuestPrefix, d.random.Intn(1000000))
	}

	nickname := req.Nickname
	if nickname == "" {
		nickname = "Guest" + guestID[len(guestID)-5:]
	}

	sess.authenticate(guestID, nickname, true, "")
	d.claimPresence(sess)

	d.send(sess, protocol.GuestLoginResult{
		Type:     protocol.TypeGuestLoginResult,
		Success:  true,
		GuestID:  guestID,
		Nickname: nickname,
	})
	d.finishAuth(sess)

	d.logger.Info("guest connected", slog.String("guest_id", guestID))
}

func (d *Dispatcher) handleSessionAuth(ctx context.Context, sess *Session, req *protocol.Request) {
	session, err := d.auth.ResolveSession(req.SessionID)
	if err != nil {
		d.send(sess, protocol.SessionAuthResult{
			Type:  protocol.TypeSessionAuthResult,
			Error: "session expired, please log in again",
		})
		return
	}

	// The account can disappear underneath a live session
	account, err := d.auth.Account(ctx, session.Username)
	if err != nil {
		d.send(sess, protocol.SessionAuthResult{
			Type:  protocol.TypeSessionAuthResult,
			Error: "user not found",
		})
		return
	}

	sess.authenticate(account.Username, account.Nickname, false, session.Token)
	d.claimPresence(sess)

	userData, rewards := d.loadUserData(ctx, account.Username)

	d.send(sess, protocol.SessionAuthResult{
		Type:           protocol.TypeSessionAuthResult,
		Success:        true,
		Nickname:       account.Nickname,
		UserData:       userData,
		OfflineRewards: rewards,
	})
	d.finishAuth(sess)

	d.logger.Info("session resumed", slog.String("username", account.Username))
}

// claimPresence inserts the session's identity into the presence table.
// If another connection held the same username it receives a single
// force_logout notice and is closed with a normal-closure code; its
// close handler cannot remove the new entry because the stored handle no
// longer matches.
func (d *Dispatcher) claimPresence(sess *Session) {
	evicted := d.presence.Claim(sess.entry())
	if evicted == nil {
		return
	}

	d.logger.Info("multi-login detected, evicting prior connection",
		slog.String("username", sess.username))

	d.sendTo(evicted.Conn, protocol.ForceLogout{
		Type:   protocol.TypeForceLogout,
		Reason: ForceLogoutReason,
	})
	evicted.Conn.Close()
}

// finishAuth replays recent community history to the new connection and
// pushes the updated presence snapshot to everyone
func (d *Dispatcher) finishAuth(sess *Session) {
	d.send(sess, protocol.History{
		Type: protocol.TypeHistory,
		Data: d.history.Snapshot(),
	})
	d.broadcastOnlineUsers()
}

// loadUserData fetches the persisted document and computes the offline
// reward against its last-logout time. Both are nil on a first login or
// when storage has nothing; a storage failure only suppresses the
// document, it never fails the authentication.
func (d *Dispatcher) loadUserData(ctx context.Context, username string) (*model.UserData, *model.OfflineReward) {
	userData, err := d.gamestate.Load(ctx, username)
	if err != nil {
		d.logger.Error("loading user data",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return nil, nil
	}
	if userData == nil {
		return nil, nil
	}
	return userData, d.offlineReward(userData.LastLogout)
}
