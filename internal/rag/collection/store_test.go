package collection_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/delphi/internal/data/store"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/rag/collection"
	"github.com/akolanti/delphi/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// letterEmbedder embeds text as counts of a, b and c, enough to rank results.
type letterEmbedder struct {
	model   string
	batches int
	fail    error
}

func (e *letterEmbedder) vector(text string) []float32 {
	return []float32{
		float32(strings.Count(text, "a")) + 0.01,
		float32(strings.Count(text, "b")) + 0.01,
		float32(strings.Count(text, "c")) + 0.01,
	}
}

func (e *letterEmbedder) GetEmbedding(_ context.Context, query string) ([]float32, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	return e.vector(query), nil
}

func (e *letterEmbedder) BatchEmbedding(_ context.Context, chunks []string, _ bool) ([][]float32, error) {
	e.batches++
	if e.fail != nil {
		return nil, e.fail
	}
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = e.vector(c)
	}
	return out, nil
}

func (e *letterEmbedder) ModelName() string { return e.model }
func (e *letterEmbedder) Dimension() int    { return 3 }

var (
	alice = commonModels.Identity{Username: "alice"}
	bob   = commonModels.Identity{Username: "bob"}
	admin = commonModels.Identity{Username: "root", IsAdmin: true}
	t0    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newTestStore(t *testing.T) (*collection.Store, *store.InMemoryCollectionRegistry, *memoryDB.Index, *letterEmbedder) {
	reg := store.InitInMemoryCollectionRegistry()
	idx := memoryDB.NewIndex()
	emb := &letterEmbedder{model: "letters-v1"}
	return collection.NewStore(reg, idx, emb, t.TempDir()), reg, idx, emb
}

func TestCreate_TwiceFails(t *testing.T) {
	s, _, idx, _ := newTestStore(t)
	ctx := context.Background()

	info, err := s.Create(ctx, "A", "alice", t0)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Owner)
	assert.Equal(t, "letters-v1", info.EmbeddingModel)
	assert.Equal(t, 3, info.EmbeddingDimension)

	exists, err := idx.CollectionExists(ctx, "A")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Create(ctx, "A", "bob", t0.Add(time.Hour))
	assert.ErrorIs(t, err, commonModels.ErrAlreadyExists)
}

func TestGetOrCreate_ReturnsOriginal(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreate(ctx, "A", "alice", t0)
	require.NoError(t, err)
	second, err := s.GetOrCreate(ctx, "A", "bob", t0.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, t0, second.CreatedAt)
	assert.Equal(t, "alice", second.Owner)
}

func TestCreate_InvalidNames(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	for _, name := range []string{"", "  ", "..", "a/b", `a\b`, collection.UnselectedCollection} {
		_, err := s.Create(context.Background(), name, "alice", t0)
		assert.Error(t, err, "name %q", name)
	}
}

func TestList(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	ctx := context.Background()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Create(ctx, n, "alice", t0)
		require.NoError(t, err)
	}

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	selection, err := s.ListForSelection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{collection.UnselectedCollection, "alpha", "mid", "zeta"}, selection)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name      string
		requester commonModels.Identity
		wantErr   error
	}{
		{"owner", alice, nil},
		{"admin", admin, nil},
		{"someone else", bob, commonModels.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, idx, _ := newTestStore(t)
			ctx := context.Background()
			_, err := s.Create(ctx, "A", "alice", t0)
			require.NoError(t, err)
			require.NoError(t, os.MkdirAll(s.CacheDir("A"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(s.CacheDir("A"), "doc.pdf"), []byte("x"), 0o644))

			err = s.Delete(ctx, "A", tt.requester)
			exists, _ := idx.CollectionExists(ctx, "A")
			_, statErr := os.Stat(s.CacheDir("A"))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, exists)
				assert.NoError(t, statErr)
				return
			}
			require.NoError(t, err)
			assert.False(t, exists)
			assert.True(t, errors.Is(statErr, os.ErrNotExist))

			_, err = s.Get(ctx, "A")
			assert.ErrorIs(t, err, commonModels.ErrNotFound)
		})
	}
}

func TestDelete_CacheRemovalFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	reg := store.InitInMemoryCollectionRegistry()
	idx := memoryDB.NewIndex()

	// a docs root that is a plain file makes every cache removal fail
	docsRoot := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.WriteFile(docsRoot, []byte("not a directory"), 0o644))
	s := collection.NewStore(reg, idx, &letterEmbedder{model: "letters-v1"}, docsRoot)

	_, err := s.Create(ctx, "A", "alice", t0)
	require.NoError(t, err)
	require.Error(t, os.RemoveAll(s.CacheDir("A")))

	require.NoError(t, s.Delete(ctx, "A", alice))

	exists, err := idx.CollectionExists(ctx, "A")
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = s.Get(ctx, "A")
	assert.ErrorIs(t, err, commonModels.ErrNotFound)
}

func TestDelete_Unknown(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	assert.ErrorIs(t, s.Delete(context.Background(), "ghost", admin), commonModels.ErrNotFound)
}

func TestUpsertAndQuery(t *testing.T) {
	s, _, _, emb := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "A", "alice", t0)
	require.NoError(t, err)

	var chunks []commonModels.Chunk
	for i := 0; i < 250; i++ {
		chunks = append(chunks, commonModels.Chunk{Id: fmt.Sprintf("filler_%d", i), Content: "ccc"})
	}
	chunks = append(chunks,
		commonModels.Chunk{Id: "doc.pdf_0_0", Content: "aaaa", Source: "doc.pdf"},
		commonModels.Chunk{Id: "doc.pdf_0_1", Content: "bbbb", Source: "doc.pdf"},
	)
	require.NoError(t, s.Upsert(ctx, "A", chunks))
	assert.Equal(t, 3, emb.batches, "252 chunks embed in batches of 100")

	hits, err := s.Query(ctx, "A", "aaa", 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc.pdf_0_0", hits[0].Id)
}

func TestEmbeddingModelIsBound(t *testing.T) {
	s, reg, _, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, reg.Add(ctx, commonModels.CollectionInfo{Name: "legacy", Owner: "alice", EmbeddingModel: "other-model", EmbeddingDimension: 3}))

	err := s.Upsert(ctx, "legacy", []commonModels.Chunk{{Id: "x", Content: "a"}})
	assert.ErrorIs(t, err, commonModels.ErrEmbeddingMismatch)

	_, err = s.Query(ctx, "legacy", "a", 5, 0)
	assert.ErrorIs(t, err, commonModels.ErrEmbeddingMismatch)
}

func TestQuery_UnknownCollection(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	_, err := s.Query(context.Background(), "ghost", "a", 5, 0)
	assert.ErrorIs(t, err, commonModels.ErrNotFound)
}

func TestUpsert_EmbeddingFailure(t *testing.T) {
	s, _, idx, emb := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "A", "alice", t0)
	require.NoError(t, err)

	emb.fail = errors.New("quota")
	err = s.Upsert(ctx, "A", []commonModels.Chunk{{Id: "x", Content: "a"}})
	assert.Error(t, err)

	hits, err := idx.Search(ctx, "A", []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, hits, "nothing is written when embedding fails")
}
