package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/data/redisStore"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/akolanti/delphi/pkg/logger_i"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps each session as one JSON value. Every save renews
// the ttl, so only idle sessions expire.
type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	s := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if s == nil {
		return nil
	}
	return NewRedisSessionStore(s)
}

func NewRedisSessionStore(s *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  s,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) Create(ctx context.Context, session conversation.Session) error {
	exists, err := s.store.Exists(ctx, sessionKeyPrefix+session.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("session %q: %w", session.ID, commonModels.ErrAlreadyExists)
	}
	return s.Save(ctx, session)
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (conversation.Session, error) {
	var session conversation.Session
	val, err := s.store.Get(ctx, sessionKeyPrefix+id)
	if s.store.IsNil(err) {
		return session, fmt.Errorf("session %q: %w", id, commonModels.ErrNotFound)
	} else if err != nil {
		return session, err
	}
	if err = json.Unmarshal([]byte(val), &session); err != nil {
		s.logger.WithTrace(ctx).Error("Error unmarshalling session", "session", id, "error", err)
		return session, err
	}
	return session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session conversation.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err = s.store.Set(ctx, sessionKeyPrefix+session.ID, data, config.RedisSessionStoreTTL); err != nil {
		s.logger.WithTrace(ctx).Error("Error saving session", "session", session.ID, "error", err)
		return err
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.store.Del(ctx, sessionKeyPrefix+id)
}
