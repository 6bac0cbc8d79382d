package diagnostics

import (
	"sync"
	"time"
)

// Entry is one captured request, kept structured so /debug/logs can be
// filtered client-side without re-parsing log lines.
type Entry struct {
	Time      time.Time `json:"time"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	RequestID string    `json:"request_id,omitempty"`
}

// LogBuffer keeps the most recent request entries for debug endpoints.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
}

// NewLogBuffer builds a buffer holding up to limit entries.
func NewLogBuffer(limit int) *LogBuffer {
	if limit <= 0 {
		limit = 100
	}
	return &LogBuffer{cap: limit, entries: make([]Entry, 0, limit)}
}

// Append stores a request entry, evicting the oldest when full.
func (b *LogBuffer) Append(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.cap {
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, entry)
}

// Snapshot returns a copy of the buffered entries, oldest first.
func (b *LogBuffer) Snapshot() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}
