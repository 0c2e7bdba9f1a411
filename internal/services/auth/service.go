// Package auth implements the account store and the session registry:
// registration, credential login, and opaque session tokens that let a
// client reconnect without re-entering a password.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hikari-games/foxden-server/internal/dependencies/clock"
	"github.com/hikari-games/foxden-server/internal/model"
	"github.com/hikari-games/foxden-server/internal/storage"
)

// Session is an issued session token. Sessions live independently of any
// connection: a disconnect does not invalidate them, only age does.
type Session struct {
	Token     string
	Username  string
	Nickname  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles registration, authentication and session management
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionTTL time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionTTL: 24 * time.Hour,
	}
}

// New creates a new auth service
func New(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	return &Service{
		storage:    store,
		clock:      clk,
		logger:     logger.With(slog.String("component", "auth")),
		sessions:   make(map[string]*Session),
		sessionTTL: cfg.SessionTTL,
	}
}

// Register validates the input and creates a new account. The underlying
// storage serializes the account-table write, so two racing registrations
// for the same username resolve to a single winner via the existence check
// plus the store's write lock.
func (s *Service) Register(ctx context.Context, username, nickname, password string) error {
	if !model.ValidUsername(username) {
		return model.ErrInvalidUsername
	}
	if !model.ValidNickname(nickname) {
		return model.ErrInvalidNickname
	}
	if !model.ValidPassword(password) {
		return model.ErrInvalidPassword
	}

	exists, err := s.storage.AccountExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return model.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := &model.Account{
		Username:     username,
		Nickname:     nickname,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return err
	}

	s.logger.Info("account registered", slog.String("username", username))
	return nil
}

// Login verifies credentials and mints a new session. Unknown usernames
// and wrong passwords are reported as distinct errors, matching what the
// client shows for each case.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if !model.ValidUsername(username) {
		return nil, model.ErrInvalidUsername
	}

	account, err := s.storage.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, model.ErrBadPassword
	}

	session := s.issue(account.Username, account.Nickname)
	s.logger.Info("login", slog.String("username", username))
	return session, nil
}

// Account returns the stored account record for a username
func (s *Service) Account(ctx context.Context, username string) (*model.Account, error) {
	return s.storage.GetAccount(ctx, username)
}

// ResolveSession returns the session for a token, or ErrSessionExpired if
// the token is unknown or older than the TTL. Expired entries are removed
// lazily here and in bulk by SweepExpiredSessions.
func (s *Service) ResolveSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrSessionExpired
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, model.ErrSessionExpired
	}

	return session, nil
}

// InvalidateSession removes a session explicitly. Not called on normal
// disconnect: sessions intentionally outlive connections.
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// SweepExpiredSessions removes all expired sessions to bound memory.
// Call periodically (the factory schedules it hourly).
func (s *Service) SweepExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired sessions swept", slog.Int("removed", removed))
	}
	return removed
}

// SessionCount returns the number of live sessions
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// issue mints and stores a new session for an account
func (s *Service) issue(username, nickname string) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     newToken(),
		Username:  username,
		Nickname:  nickname,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// newToken generates an unguessable session token
func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}

// IsValidationError reports whether err is a registration-input problem
// the user can correct, as opposed to a storage or internal failure
func IsValidationError(err error) bool {
	return errors.Is(err, model.ErrInvalidUsername) ||
		errors.Is(err, model.ErrInvalidNickname) ||
		errors.Is(err, model.ErrInvalidPassword)
}
