// Package file is a filesystem-backed storage implementation: one JSON
// account table plus one JSON document per account, each guarded by an
// advisory file lock so concurrent server processes cannot lose writes.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hikari-games/foxden-server/internal/model"
	"github.com/hikari-games/foxden-server/internal/storage"
)

const accountsFile = "accounts.json"

// Storage is a file-backed implementation of the storage interface
type Storage struct {
	cfg Config
}

// New creates a file storage instance, creating the data directory and an
// empty account table if they do not exist yet
func New(cfg Config) (*Storage, error) {
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = DefaultConfig().LockTimeout
	}
	if cfg.LockRetryDelay == 0 {
		cfg.LockRetryDelay = DefaultConfig().LockRetryDelay
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	s := &Storage{cfg: cfg}

	accountsPath := s.accountsPath()
	if _, err := os.Stat(accountsPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(accountsPath, []byte("{}\n"), 0o644); err != nil {
			return nil, fmt.Errorf("initializing account table: %w", err)
		}
	}

	return s, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) accountsPath() string {
	return filepath.Join(s.cfg.Dir, accountsFile)
}

func (s *Storage) userDataPath(username string) string {
	return filepath.Join(s.cfg.Dir, username+".json")
}

// readAccountTable loads the whole account table. Callers that modify it
// must do so inside withLock on the accounts path.
func (s *Storage) readAccountTable() (map[string]*model.Account, error) {
	data, err := os.ReadFile(s.accountsPath())
	if err != nil {
		return nil, fmt.Errorf("reading account table: %w", err)
	}

	accounts := make(map[string]*model.Account)
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("parsing account table: %w", err)
	}
	return accounts, nil
}

func (s *Storage) writeAccountTable(accounts map[string]*model.Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.accountsPath(), data, 0o644)
}

// Account operations

// SaveAccount inserts or replaces an account. The whole table is
// read-modify-written under the table lock, which is what serializes two
// racing registrations.
func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	return s.withLock(ctx, s.accountsPath(), func() error {
		accounts, err := s.readAccountTable()
		if err != nil {
			return err
		}
		accounts[account.Username] = account
		return s.writeAccountTable(accounts)
	})
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	var account *model.Account
	err := s.withLock(ctx, s.accountsPath(), func() error {
		accounts, err := s.readAccountTable()
		if err != nil {
			return err
		}
		account = accounts[username]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

func (s *Storage) AccountExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetAccount(ctx, username)
	if errors.Is(err, model.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Game-state operations

func (s *Storage) SaveUserData(ctx context.Context, data *model.UserData) error {
	path := s.userDataPath(data.Username)
	return s.withLock(ctx, path, func() error {
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, raw, 0o644)
	})
}

func (s *Storage) GetUserData(ctx context.Context, username string) (*model.UserData, error) {
	path := s.userDataPath(username)

	var data model.UserData
	err := s.withLock(ctx, path, func() error {
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return model.ErrUserDataNotFound
			}
			return err
		}
		return json.Unmarshal(raw, &data)
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}
