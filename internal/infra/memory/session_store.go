package memory

import (
	"fmt"
	"sync"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. It indexes
// sessions by id and by join code under one lock, so a Put either claims both
// keys or neither.
type SessionStore struct {
	mu     sync.RWMutex
	byID   map[string]*app.Session
	byCode map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:   make(map[string]*app.Session),
		byCode: make(map[string]string),
	}
}

func (s *SessionStore) Put(session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[session.ID()]; exists {
		return fmt.Errorf("%w: session id %s already exists", domain.ErrConflict, session.ID())
	}
	if _, exists := s.byCode[session.JoinCode()]; exists {
		return fmt.Errorf("%w: join code %s already in use", domain.ErrConflict, session.JoinCode())
	}
	s.byID[session.ID()] = session
	s.byCode[session.JoinCode()] = session.ID()
	return nil
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byID[sessionID]
	return session, ok
}

func (s *SessionStore) GetByCode(joinCode string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[joinCode]
	if !ok {
		return nil, false
	}
	session, ok := s.byID[id]
	return session, ok
}
