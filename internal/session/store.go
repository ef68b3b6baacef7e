package session

import (
	"context"
	"sync"
	"time"
)

// Store persists sessions. One Load at turn start and one Save at turn
// end; the webhook layer serializes turns per session, so stores do not
// need optimistic locking.
type Store interface {
	// Load returns the session, or errors.ErrNotFound when absent.
	Load(ctx context.Context, sessionID string) (*Session, error)
	// Save upserts the whole session.
	Save(ctx context.Context, s *Session) error
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error
	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and single-process runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Load returns a deep copy so callers cannot mutate the stored session
// without going through Save.
func (m *MemoryStore) Load(_ context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errNotFound(sessionID)
	}
	return copySession(s), nil
}

// Save stores a deep copy of the session.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := copySession(s)
	cp.UpdatedAt = time.Now()
	m.sessions[s.ID] = cp
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// copySession deep-copies the mutable parts of a session.
func copySession(s *Session) *Session {
	cp := *s
	cp.State = s.State.Clone()
	cp.NullFields = make(map[string]bool, len(s.NullFields))
	for k, v := range s.NullFields {
		cp.NullFields[k] = v
	}
	cp.History = append(History(nil), s.History...)
	if s.Profile != nil {
		profile := *s.Profile
		cp.Profile = &profile
	}
	return &cp
}
