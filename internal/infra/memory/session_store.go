package memory

import (
	"sync"

	"geo-quiz-service/internal/game"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Controller
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*game.Controller),
	}
}

func (s *SessionStore) Put(id string, controller *game.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = controller
}

func (s *SessionStore) Get(id string) (*game.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	controller, ok := s.sessions[id]
	return controller, ok
}

// Peek is Get; the in-memory store keeps no access state.
func (s *SessionStore) Peek(id string) (*game.Controller, bool) {
	return s.Get(id)
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
