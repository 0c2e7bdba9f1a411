package storage

import (
	"context"

	"github.com/hikari-games/foxden-server/internal/model"
)

// Storage defines the interface for durable account and game-state
// persistence. Implementations must serialize concurrent writers so that
// two racing registrations cannot lose an account, and game-state writes
// for unrelated accounts must not contend with each other.
type Storage interface {
	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	AccountExists(ctx context.Context, username string) (bool, error)

	// Game-state operations
	SaveUserData(ctx context.Context, data *model.UserData) error
	GetUserData(ctx context.Context, username string) (*model.UserData, error)
}
