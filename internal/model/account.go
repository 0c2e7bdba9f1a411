package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// GuestPrefix namespaces guest usernames so they can never collide with
// registered accounts, whose usernames reject the '-' character.
const GuestPrefix = "GUEST-"

// Account is a registered user record, keyed by username
type Account struct {
	Username     string    `json:"username"` // login username (immutable)
	Nickname     string    `json:"nickname"`
	PasswordHash string    `json:"password"` // bcrypt hash
	CreatedAt    time.Time `json:"createdAt"`
}

// UserData is the persisted per-account document: the latest sanitized
// game state plus the logout timestamp used for offline rewards
type UserData struct {
	Username   string    `json:"username"`
	GameState  GameState `json:"gameState"`
	LastLogout time.Time `json:"lastLogout"`
}

// IsGuestUsername reports whether a username belongs to the guest namespace
func IsGuestUsername(username string) bool {
	return strings.HasPrefix(username, GuestPrefix)
}

// ValidUsername checks the registration username rules:
// 4-20 characters, letters, digits and underscore only
func ValidUsername(username string) bool {
	if len(username) < 4 || len(username) > 20 {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// ValidNickname checks the nickname rules: 2-10 characters.
// Counted in runes since nicknames are free-form text.
func ValidNickname(nickname string) bool {
	n := utf8.RuneCountInString(nickname)
	return n >= 2 && n <= 10
}

// ValidPassword checks the password rule: at least 6 characters
func ValidPassword(password string) bool {
	return len(password) >= 6
}
