package conversation

import (
	"context"
	"slices"
	"time"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// Session is one user's conversation: the collection it is bound to and the
// chat history of that binding. It is passed into and returned from every
// engine call; nothing about it is kept anywhere else.
type Session struct {
	ID         string                     `json:"id"`
	Owner      string                     `json:"owner"`
	Collection string                     `json:"collection,omitempty"`
	History    []commonModels.ChatMessage `json:"history"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

func NewSession(id string, owner string, now time.Time) Session {
	return Session{
		ID:        id,
		Owner:     owner,
		History:   []commonModels.ChatMessage{},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s Session) Bound() bool {
	return s.Collection != ""
}

// Bind selects a collection. The previous history belongs to the previous
// binding and is dropped, even when rebinding the same name.
func (s Session) Bind(collection string) Session {
	s.Collection = collection
	s.History = []commonModels.ChatMessage{}
	return s
}

func (s Session) Unbind() Session {
	s.Collection = ""
	s.History = []commonModels.ChatMessage{}
	return s
}

// Turns returns the number of completed (question, answer) exchanges.
func (s Session) Turns() int {
	return len(s.History) / 2
}

func (s Session) clone() Session {
	s.History = slices.Clone(s.History)
	return s
}

type SessionStore interface {
	Create(ctx context.Context, session Session) error
	// Get fails with commonModels.ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, id string) error
}
