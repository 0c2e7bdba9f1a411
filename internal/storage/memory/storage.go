package memory

import (
	"context"
	"sync"

	"github.com/hikari-games/foxden-server/internal/model"
	"github.com/hikari-games/foxden-server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts map[string]*model.Account
	userData map[string]*model.UserData
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts: make(map[string]*model.Account),
		userData: make(map[string]*model.UserData),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *account
	s.accounts[account.Username] = &cp
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *Storage) AccountExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[username]
	return ok, nil
}

// Game-state operations

func (s *Storage) SaveUserData(ctx context.Context, data *model.UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *data
	s.userData[data.Username] = &cp
	return nil
}

func (s *Storage) GetUserData(ctx context.Context, username string) (*model.UserData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.userData[username]
	if !ok {
		return nil, model.ErrUserDataNotFound
	}
	cp := *data
	return &cp, nil
}
