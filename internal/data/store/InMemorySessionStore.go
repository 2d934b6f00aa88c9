package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/rag/conversation"
)

type sessionEntry struct {
	session conversation.Session
	expires time.Time
}

type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]sessionEntry),
		ttl:      config.RedisSessionStoreTTL,
		now:      time.Now,
	}
}

func (s *InMemorySessionStore) Create(_ context.Context, session conversation.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(session.ID); ok {
		return fmt.Errorf("session %q: %w", session.ID, commonModels.ErrAlreadyExists)
	}
	s.sessions[session.ID] = sessionEntry{session: session, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *InMemorySessionStore) Get(_ context.Context, id string) (conversation.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return conversation.Session{}, fmt.Errorf("session %q: %w", id, commonModels.ErrNotFound)
	}
	return e.session, nil
}

func (s *InMemorySessionStore) Save(_ context.Context, session conversation.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = sessionEntry{session: session, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// live must be called with mu held; expired entries are dropped on the way.
func (s *InMemorySessionStore) live(id string) (sessionEntry, bool) {
	e, ok := s.sessions[id]
	if ok && s.now().After(e.expires) {
		delete(s.sessions, id)
		return sessionEntry{}, false
	}
	return e, ok
}
