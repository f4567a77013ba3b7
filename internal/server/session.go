package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"maps-mcp/internal/tools"
)

// Session is the state created by a successful initialize: the registry
// bound to the resolved key.
type Session struct {
	ID        string
	Registry  *tools.Registry
	KeySource string
	CreatedAt time.Time
}

func newSession(reg *tools.Registry, keySource string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Registry:  reg,
		KeySource: keySource,
		CreatedAt: time.Now().UTC(),
	}
}

// sessionSlot holds at most one live session per process. A later initialize
// replaces the current session (last write wins); clients sharing one
// bridge therefore share one key.
type sessionSlot struct {
	mu      sync.RWMutex
	current *Session
}

// Get returns the live session, or nil before the first initialize.
func (s *sessionSlot) Get() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace installs next and returns the session it displaced.
func (s *sessionSlot) Replace(next *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = next
	return prev
}
