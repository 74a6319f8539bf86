package application

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// Manager holds the sessions of a long-running host by ID. Sessions share
// nothing; the manager only routes calls to them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     []Option
}

// NewManager creates a manager whose sessions use opts.
func NewManager(opts ...Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Configure replaces the options used for sessions created from now on.
// Existing sessions keep the options they started with.
func (m *Manager) Configure(opts ...Option) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
}

// Start creates and starts a session, returning it with its welcome text.
func (m *Manager) Start(ctx context.Context) (*Session, string, error) {
	m.mu.RLock()
	opts := m.opts
	m.mu.RUnlock()

	s, err := NewSession(uuid.NewString(), opts...)
	if err != nil {
		return nil, "", err
	}
	welcome, err := s.StartSession(ctx)
	if err != nil {
		return nil, "", err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s, welcome, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ProcessTurn routes a turn to a session.
func (m *Manager) ProcessTurn(ctx context.Context, id, userMessage string) ([]Entry, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.ProcessTurn(ctx, userMessage)
}

// End ends a session and returns its report. The session stays readable
// until Remove.
func (m *Manager) End(ctx context.Context, id string) (*report.Report, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.End(ctx)
}

// Remove forgets a session, ending it first.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	_, err := s.End(ctx)
	return err
}

// IDs returns the IDs of every held session, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of held sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
