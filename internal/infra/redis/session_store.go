package redis

import (
	"context"
	"sync"
	"time"

	"geo-quiz-service/internal/game"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Controllers own live timers, so they stay in a local map on the instance that created them.
//   - Redis holds a liveness marker per session (with TTL) so other instances and operators can see
//     which sessions exist and where; routing clients to the owning instance is left to the load balancer.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	instance string
	mu       sync.RWMutex
	sessions map[string]*game.Controller
}

func NewSessionStore(client *redis.Client, ttl time.Duration, instance string) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		instance: instance,
		sessions: make(map[string]*game.Controller),
	}
}

func (s *SessionStore) Put(id string, controller *game.Controller) {
	s.mu.Lock()
	s.sessions[id] = controller
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(id), s.instance, s.ttl).Err()
}

// Get returns the local controller and refreshes its liveness marker.
func (s *SessionStore) Get(id string) (*game.Controller, bool) {
	controller, ok := s.Peek(id)
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(id), s.ttl).Err()
	}
	return controller, ok
}

// Peek returns the local controller without touching Redis.
func (s *SessionStore) Peek(id string) (*game.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	controller, ok := s.sessions[id]
	return controller, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(id)).Err()
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

// Owner returns the instance that registered a session, as recorded in Redis.
func (s *SessionStore) Owner(ctx context.Context, id string) (string, error) {
	return s.client.Get(ctx, s.key(id)).Result()
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
