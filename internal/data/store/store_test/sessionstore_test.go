package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/data/store"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStores(t *testing.T) {
	_, internalStore := newMiniRedis(t)
	stores := map[string]conversation.SessionStore{
		"redis":     store.NewRedisSessionStore(internalStore),
		"in-memory": store.InitInMemorySessionStore(),
	}
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, sessions := range stores {
		t.Run(name, func(t *testing.T) {
			s := conversation.NewSession("s1", "alice", created).Bind("A")
			require.NoError(t, sessions.Create(ctx, s))
			assert.ErrorIs(t, sessions.Create(ctx, s), commonModels.ErrAlreadyExists)

			s.History = append(s.History,
				commonModels.ChatMessage{Role: commonModels.RoleUser, Content: "What is X?"},
				commonModels.ChatMessage{Role: commonModels.RoleAssistant, Content: "A letter."})
			require.NoError(t, sessions.Save(ctx, s))

			got, err := sessions.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "A", got.Collection)
			assert.Equal(t, s.History, got.History)
			assert.True(t, got.CreatedAt.Equal(created))

			require.NoError(t, sessions.Delete(ctx, "s1"))
			_, err = sessions.Get(ctx, "s1")
			assert.ErrorIs(t, err, commonModels.ErrNotFound)
		})
	}
}

func TestRedisSessionStore_Expires(t *testing.T) {
	mr, internalStore := newMiniRedis(t)
	sessions := store.NewRedisSessionStore(internalStore)
	ctx := context.Background()

	require.NoError(t, sessions.Create(ctx, conversation.NewSession("s1", "alice", time.Now())))
	mr.FastForward(config.RedisSessionStoreTTL - time.Minute)
	_, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = sessions.Get(ctx, "s1")
	assert.ErrorIs(t, err, commonModels.ErrNotFound)
}
