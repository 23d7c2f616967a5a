package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"portal-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Engines hold timers and callbacks, so sessions live in a local map; Redis
// carries a liveness key per session (owner user ID) that other instances and
// operators can inspect. The key lives for at least the quiz duration and is
// pushed back on every lookup.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), session.UserID(), s.ttlFor(session)).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if ok {
		if ttl := s.ttlFor(session); ttl > 0 {
			_ = s.client.Expire(context.Background(), s.key(sessionID), ttl).Err()
		}
	}
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// ttlFor returns zero (no expiry) when the store has no ttl configured.
func (s *SessionStore) ttlFor(session *app.Session) time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	if d := session.Duration(); d > s.ttl {
		return d
	}
	return s.ttl
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
