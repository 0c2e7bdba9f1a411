package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hikari-games/foxden-server/internal/model"
	"github.com/hikari-games/foxden-server/internal/protocol"
	"github.com/hikari-games/foxden-server/internal/services/reward"
)

func (d *Dispatcher) handleSaveGame(ctx context.Context, sess *Session, req *protocol.Request) {
	if sess.isGuest {
		// Guest state lives only in the client
		d.send(sess, protocol.SaveResult{
			Type:    protocol.TypeSaveResult,
			Message: "guest data is not saved to the server",
		})
		return
	}

	err := d.gamestate.Save(ctx, sess.username, req.GameState)
	d.send(sess, protocol.SaveResult{
		Type:    protocol.TypeSaveResult,
		Success: err == nil,
	})
}

func (d *Dispatcher) handleShareLocation(ctx context.Context, sess *Session, req *protocol.Request) {
	// The share event is the client's own envelope stamped with a server
	// timestamp, appended to the bounded history and fanned out to all
	var event map[string]any
	if err := json.Unmarshal(req.Raw, &event); err != nil {
		d.send(sess, protocol.ErrorMessage{Type: protocol.TypeError, Message: "malformed message"})
		return
	}
	event["timestamp"] = d.clock.Now().UnixMilli()

	data, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("encode failed", slog.String("error", err.Error()))
		return
	}

	d.history.Append(data)
	d.broadcast(data)
}

func (d *Dispatcher) handleGetOnlineUsers(ctx context.Context, sess *Session, req *protocol.Request) {
	d.send(sess, protocol.OnlineUsers{
		Type:  protocol.TypeOnlineUsers,
		Users: d.onlineUserList(),
	})
}

func (d *Dispatcher) handleVisitUser(ctx context.Context, sess *Session, req *protocol.Request) {
	target, ok := d.presence.Get(req.TargetUsername)
	if !ok {
		return // target offline, silently dropped
	}

	d.sendTo(target.Conn, protocol.VisitorNotification{
		Type:    protocol.TypeVisitorNotification,
		Visitor: sess.summary(),
	})

	d.logger.Info("visit",
		slog.String("visitor", sess.username),
		slog.String("target", target.Username))
}

func (d *Dispatcher) handleShareGameState(ctx context.Context, sess *Session, req *protocol.Request) {
	d.send(sess, protocol.GameStateResponse{
		Type:  protocol.TypeGameStateResponse,
		State: req.State,
	})
}

func (d *Dispatcher) handleFriendRequest(ctx context.Context, sess *Session, req *protocol.Request) {
	target, ok := d.presence.Get(req.TargetUsername)
	if !ok {
		return
	}

	d.sendTo(target.Conn, protocol.FriendRequest{
		Type: protocol.TypeFriendRequest,
		From: sess.summary(),
	})
}

func (d *Dispatcher) handleFriendAccept(ctx context.Context, sess *Session, req *protocol.Request) {
	target, ok := d.presence.Get(req.TargetUsername)
	if !ok {
		return
	}

	d.sendTo(target.Conn, protocol.FriendAccepted{
		Type:   protocol.TypeFriendAccepted,
		Friend: sess.summary(),
	})
}

func (d *Dispatcher) handleSendGift(ctx context.Context, sess *Session, req *protocol.Request) {
	target, ok := d.presence.Get(req.TargetUsername)
	if !ok {
		return
	}

	d.sendTo(target.Conn, protocol.ReceiveGift{
		Type: protocol.TypeReceiveGift,
		From: sess.summary(),
		Gift: req.Gift,
	})

	d.logger.Info("gift sent",
		slog.String("from", sess.username),
		slog.String("to", target.Username))
}

func (d *Dispatcher) handlePing(ctx context.Context, sess *Session, req *protocol.Request) {
	d.send(sess, protocol.Pong{
		Type:      protocol.TypePong,
		Timestamp: d.clock.Now().UnixMilli(),
	})
}

// offlineReward applies the registered-account accrual against the
// injected clock
func (d *Dispatcher) offlineReward(lastLogout time.Time) *model.OfflineReward {
	return reward.Offline(lastLogout, d.clock.Now())
}
