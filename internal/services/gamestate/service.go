// Package gamestate owns the per-account persisted game document: total
// sanitization of inbound state and load/save through storage.
package gamestate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hikari-games/foxden-server/internal/dependencies/clock"
	"github.com/hikari-games/foxden-server/internal/model"
	"github.com/hikari-games/foxden-server/internal/storage"
)

// Service sanitizes and persists per-account game state
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a game-state service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "gamestate")),
	}
}

// Save sanitizes a client-supplied state document and persists it along
// with a fresh last-logout timestamp
func (s *Service) Save(ctx context.Context, username string, raw json.RawMessage) error {
	data := &model.UserData{
		Username:   username,
		GameState:  Sanitize(raw),
		LastLogout: s.clock.Now(),
	}

	if err := s.storage.SaveUserData(ctx, data); err != nil {
		s.logger.Error("save failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Load returns the persisted document for an account, or (nil, nil) for a
// first login with nothing saved yet
func (s *Service) Load(ctx context.Context, username string) (*model.UserData, error) {
	data, err := s.storage.GetUserData(ctx, username)
	if errors.Is(err, model.ErrUserDataNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
