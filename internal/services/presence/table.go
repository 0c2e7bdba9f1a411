// Package presence tracks which users currently hold a live connection.
// The table is the single source of truth for "who is online" and the
// enforcement point for the one-connection-per-account rule.
package presence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Conn is the capability a presence entry holds on its connection. It is
// deliberately opaque so routing logic can be tested without a socket.
type Conn interface {
	// ID identifies the connection, for the release handle-match
	ID() uuid.UUID
	// Send queues one outbound envelope; it must not block
	Send(data []byte)
	// Close tears the connection down after flushing queued messages
	Close()
}

// Entry is one online user
type Entry struct {
	Username string
	Nickname string
	IsGuest  bool
	Conn     Conn
}

// Table is the process-wide username -> live connection mapping. All
// mutations take the table lock, so a claim and its eviction decision are
// a single atomic step per username.
type Table struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	logger  *slog.Logger
}

// NewTable creates an empty presence table
func NewTable(logger *slog.Logger) *Table {
	return &Table{
		entries: make(map[string]*Entry),
		logger:  logger.With(slog.String("component", "presence")),
	}
}

// Claim inserts an entry, atomically returning any prior entry for the
// same username so the caller can notify and close it. The prior entry is
// already removed from the table when Claim returns.
func (t *Table) Claim(entry *Entry) (evicted *Entry) {
	t.mu.Lock()
	prior := t.entries[entry.Username]
	if prior != nil && prior.Conn.ID() == entry.Conn.ID() {
		// Same connection re-authenticating; nothing to evict
		prior = nil
	}
	t.entries[entry.Username] = entry
	online := len(t.entries)
	t.mu.Unlock()

	t.logger.Info("presence claimed",
		slog.String("username", entry.Username),
		slog.Bool("guest", entry.IsGuest),
		slog.Bool("evicted_prior", prior != nil),
		slog.Int("online", online))
	return prior
}

// Release removes the entry for a disconnecting connection, but only if
// the stored handle still belongs to the caller. A connection that was
// just evicted therefore cannot delete its replacement's entry.
func (t *Table) Release(username string, connID uuid.UUID) bool {
	t.mu.Lock()
	entry, ok := t.entries[username]
	if !ok || entry.Conn.ID() != connID {
		t.mu.Unlock()
		return false
	}
	delete(t.entries, username)
	online := len(t.entries)
	t.mu.Unlock()

	t.logger.Info("presence released",
		slog.String("username", username),
		slog.Int("online", online))
	return true
}

// Get returns the entry for a username, if online
func (t *Table) Get(username string) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[username]
	return entry, ok
}

// List returns a snapshot of all online entries
func (t *Table) List() []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Entry, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, entry)
	}
	return out
}

// ListOthers returns a snapshot of all online entries except one username
func (t *Table) ListOthers(excluding string) []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Entry, 0, len(t.entries))
	for username, entry := range t.entries {
		if username == excluding {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Count returns the number of online users
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
