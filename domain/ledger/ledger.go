package ledger

import (
	"sync"
	"time"
)

// Ledger is the ordered record of everything said in one session.
type Ledger struct {
	sessionID string
	entries   []Entry
	mu        sync.RWMutex
}

// New creates an empty ledger for the given session.
func New(sessionID string) *Ledger {
	return &Ledger{
		sessionID: sessionID,
		entries:   make([]Entry, 0),
	}
}

// Append adds entries in order. All entries land or none do.
func (l *Ledger) Append(entries ...Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range entries {
		e.Seq = len(l.entries) + 1
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now()
		}
		l.entries = append(l.entries, e)
	}
}

// Entries returns a copy of all entries.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// EntriesByKind returns entries of one kind.
func (l *Ledger) EntriesByKind(kind Kind) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var filtered []Entry
	for _, e := range l.entries {
		if e.Kind == kind {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// LastEntry returns the most recent entry, or nil if empty.
func (l *Ledger) LastEntry() *Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return nil
	}
	entry := l.entries[len(l.entries)-1]
	return &entry
}

// Count returns the number of entries.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// SessionID returns the associated session ID.
func (l *Ledger) SessionID() string {
	return l.sessionID
}
