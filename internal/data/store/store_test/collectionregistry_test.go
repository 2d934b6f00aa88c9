package store_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/delphi/internal/data/store"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/rag/collection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionRegistries(t *testing.T) {
	mr, internalStore := newMiniRedis(t)
	registries := map[string]collection.Registry{
		"redis":     store.NewRedisCollectionRegistry(internalStore),
		"in-memory": store.InitInMemoryCollectionRegistry(),
	}
	ctx := context.Background()
	info := commonModels.CollectionInfo{
		Name:               "A",
		Owner:              "alice",
		CreatedAt:          time.Date(2024, 5, 1, 12, 30, 0, 123, time.UTC),
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingDimension: 1536,
	}

	for name, reg := range registries {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, reg.Add(ctx, info))
			assert.ErrorIs(t, reg.Add(ctx, info), commonModels.ErrAlreadyExists)
			require.NoError(t, reg.Add(ctx, commonModels.CollectionInfo{Name: "B", Owner: "bob"}))

			got, err := reg.Get(ctx, "A")
			require.NoError(t, err)
			assert.Equal(t, info.Owner, got.Owner)
			assert.Equal(t, info.EmbeddingModel, got.EmbeddingModel)
			assert.Equal(t, info.EmbeddingDimension, got.EmbeddingDimension)
			assert.True(t, info.CreatedAt.Equal(got.CreatedAt))

			names, err := reg.Names(ctx)
			require.NoError(t, err)
			sort.Strings(names)
			assert.Equal(t, []string{"A", "B"}, names)

			require.NoError(t, reg.Delete(ctx, "A"))
			_, err = reg.Get(ctx, "A")
			assert.ErrorIs(t, err, commonModels.ErrNotFound)
			names, err = reg.Names(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"B"}, names)
		})
	}

	// the redis layout is one hash per collection plus a set of names
	assert.True(t, mr.Exists("collection:B"))
	members, err := mr.SMembers("collections")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, members)
}

func TestRedisCollectionRegistry_ListedNamesAreReadable(t *testing.T) {
	_, internalStore := newMiniRedis(t)
	reg := store.NewRedisCollectionRegistry(internalStore)
	ctx := context.Background()

	const total = 20
	var wg sync.WaitGroup
	for i := range total {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Add(ctx, commonModels.CollectionInfo{Name: fmt.Sprintf("c%d", i), Owner: "alice"})
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		names, err := reg.Names(ctx)
		require.NoError(t, err)
		for _, name := range names {
			_, err := reg.Get(ctx, name)
			require.NoError(t, err, "%s is listed but not readable", name)
		}
		select {
		case <-done:
			names, err = reg.Names(ctx)
			require.NoError(t, err)
			assert.Len(t, names, total)
			return
		default:
		}
	}
}

func TestRedisCollectionRegistry_DuplicateKeepsOriginal(t *testing.T) {
	_, internalStore := newMiniRedis(t)
	reg := store.NewRedisCollectionRegistry(internalStore)
	ctx := context.Background()

	require.NoError(t, reg.Add(ctx, commonModels.CollectionInfo{Name: "A", Owner: "alice"}))
	assert.ErrorIs(t, reg.Add(ctx, commonModels.CollectionInfo{Name: "A", Owner: "bob"}), commonModels.ErrAlreadyExists)

	got, err := reg.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
}
