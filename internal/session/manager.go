package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 2 * time.Hour

// Manager tracks live sessions by ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

// NewManager creates a Manager. A non-positive idle uses DefaultIdleTimeout.
func NewManager(idle time.Duration) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

// Create starts a new session with a random ID.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString())
	s.touch(m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session for id and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.touch(m.now())
	return s, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// created reports whether a new session was started.
func (m *Manager) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
