package quiz

import (
	"sync"

	"github.com/akt-prep/backend/internal/itembank"
)

// Manager holds one Session per authenticated user. The bank is shared and
// read-only; each session carries its own lock.
type Manager struct {
	mu       sync.RWMutex
	bank     *itembank.Bank
	sessions map[string]*Session
}

func NewManager(bank *itembank.Bank) *Manager {
	return &Manager{
		bank:     bank,
		sessions: make(map[string]*Session),
	}
}

// Get returns the user's session, creating a fresh one on first use.
func (m *Manager) Get(userID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = NewSession(userID, m.bank)
	m.sessions[userID] = s
	return s
}

// Reset discards any existing state for the user and starts a fresh
// session. Called on sign-in so every sign-in begins at cursor 0 with an
// empty score.
func (m *Manager) Reset(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := NewSession(userID, m.bank)
	m.sessions[userID] = s
	return s
}

// Drop removes the user's session entirely. Called on sign-out.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
