// Package history keeps the bounded log of recent community share events,
// replayed to each newly authenticated connection.
package history

import (
	"encoding/json"
	"sync"
)

// DefaultCapacity matches the community feed length shown by the client
const DefaultCapacity = 20

// Log is a process-wide bounded FIFO of broadcast events. When full, the
// oldest entry is evicted first.
type Log struct {
	mu       sync.RWMutex
	entries  []json.RawMessage
	capacity int
}

// NewLog creates an empty log with the given capacity; zero or negative
// means DefaultCapacity
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append records one event, evicting the oldest if the log is full
func (l *Log) Append(event json.RawMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, event)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Snapshot returns the retained events in arrival order
func (l *Log) Snapshot() []json.RawMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]json.RawMessage, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained events
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
