package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Notes:
//   - Sessions themselves stay in a local in-memory map, since the aggregate
//     carries a mutex and the per-call progression logic.
//   - Redis holds a liveness marker per session plus the join-code -> id
//     mapping, which is what gives codes cross-restart uniqueness within the
//     TTL window (and could be extended to route sessions across instances).
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.Session
	byCode   map[string]string
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
		byCode:   make(map[string]string),
	}
}

func (s *SessionStore) Put(session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID()]; exists {
		return fmt.Errorf("%w: session id %s already exists", domain.ErrConflict, session.ID())
	}
	if _, exists := s.byCode[session.JoinCode()]; exists {
		return fmt.Errorf("%w: join code %s already in use", domain.ErrConflict, session.JoinCode())
	}

	// Claim the code in Redis first so two instances cannot hand out the
	// same one; NX makes the claim atomic.
	ctx := context.Background()
	claimed, err := s.client.SetNX(ctx, s.codeKey(session.JoinCode()), session.ID(), s.ttl).Result()
	if err == nil && !claimed {
		return fmt.Errorf("%w: join code %s already in use", domain.ErrConflict, session.JoinCode())
	}

	s.sessions[session.ID()] = session
	s.byCode[session.JoinCode()] = session.ID()
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.sessionKey(session.ID()), session.JoinCode(), s.ttl).Err()
	return nil
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) GetByCode(joinCode string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[joinCode]
	if !ok {
		return nil, false
	}
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *SessionStore) codeKey(joinCode string) string {
	return "session:code:" + joinCode
}
