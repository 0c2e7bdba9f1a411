// Package factory wires the application's services and their
// dependencies together.
package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/hikari-games/foxden-server/internal/dependencies/clock"
	"github.com/hikari-games/foxden-server/internal/dependencies/random"
	"github.com/hikari-games/foxden-server/internal/gateway"
	"github.com/hikari-games/foxden-server/internal/services/auth"
	"github.com/hikari-games/foxden-server/internal/services/gamestate"
	"github.com/hikari-games/foxden-server/internal/services/history"
	"github.com/hikari-games/foxden-server/internal/services/presence"
	"github.com/hikari-games/foxden-server/internal/storage"
	filestorage "github.com/hikari-games/foxden-server/internal/storage/file"
	"github.com/hikari-games/foxden-server/internal/storage/memory"
	redisstorage "github.com/hikari-games/foxden-server/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService      *auth.Service
	PresenceTable    *presence.Table
	HistoryLog       *history.Log
	GameStateService *gamestate.Service
	Dispatcher       *gateway.Dispatcher

	sweepInterval time.Duration
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// FileConfig holds file backend settings (required if StorageType is "file")
	FileConfig *filestorage.Config
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SweepInterval is how often expired sessions are purged (optional)
	// If zero, defaults to one hour
	SweepInterval time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		if cfg.FileConfig == nil {
			return nil, errors.New("FileConfig required when StorageType is file")
		}
		fileStore, err := filestorage.New(*cfg.FileConfig)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionTTL == 0 {
		authCfg = auth.DefaultConfig()
	}

	sweepInterval := cfg.SweepInterval
	if sweepInterval == 0 {
		sweepInterval = time.Hour
	}

	return newWithDependencies(store, clk, rnd, authCfg, sweepInterval, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, sweepInterval time.Duration, logger *slog.Logger) *App {
	// Create services
	authService := auth.New(store, clk, authCfg, logger)
	presenceTable := presence.NewTable(logger)
	historyLog := history.NewLog(history.DefaultCapacity)
	gameStateService := gamestate.New(store, clk, logger)

	dispatcher := gateway.NewDispatcher(gateway.Config{
		Auth:      authService,
		Presence:  presenceTable,
		History:   historyLog,
		GameState: gameStateService,
		Clock:     clk,
		Random:    rnd,
		Logger:    logger,
	})

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		AuthService:      authService,
		PresenceTable:    presenceTable,
		HistoryLog:       historyLog,
		GameStateService: gameStateService,
		Dispatcher:       dispatcher,
		sweepInterval:    sweepInterval,
	}
}

// RunSessionSweeper purges expired sessions on a fixed interval until the
// context is cancelled. Expired sessions are also rejected lazily on use;
// the sweep reclaims memory for sessions that never come back.
func (a *App) RunSessionSweeper(ctx context.Context) {
	ticker := time.NewTicker(a.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.AuthService.SweepExpiredSessions()
		}
	}
}
