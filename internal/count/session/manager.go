package session

import (
	"fmt"
	"sync"
)

// Manager holds the live session for each (org, room). One session exists per
// room per process; there is deliberately no cross-process coordination.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) Get(orgID, roomID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key(orgID, roomID)]
	return s, ok
}

// Put replaces whatever session exists for the room. Used on hydrate and on
// the post-commit refresh; a failed hydrate must never reach this point, so
// an already-hydrated session survives load errors.
func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key(s.orgID, s.roomID)] = s
}

func (m *Manager) Drop(orgID, roomID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key(orgID, roomID))
}

func key(orgID, roomID int64) string {
	return fmt.Sprintf("%d/%d", orgID, roomID)
}
