// Package memoryDB is an in-process vector index used when qdrant is unreachable and in tests.
package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

type point struct {
	chunk  commonModels.Chunk
	vector []float32
}

type collection struct {
	dimension uint64
	points    map[string]point
}

type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func NewIndex() *Index {
	return &Index{collections: make(map[string]*collection)}
}

func (m *Index) CreateCollection(_ context.Context, name string, dimension uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = &collection{dimension: dimension, points: make(map[string]point)}
	}
	return nil
}

func (m *Index) CollectionExists(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[name]
	return ok, nil
}

func (m *Index) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

func (m *Index) UpsertBatch(_ context.Context, name string, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return fmt.Errorf("collection %q: %w", name, commonModels.ErrNotFound)
	}
	// the batch is applied whole or not at all
	for i, v := range vectors {
		if c.dimension != 0 && uint64(len(v)) != c.dimension {
			return fmt.Errorf("vector %d has dimension %d, collection expects %d", i, len(v), c.dimension)
		}
	}
	for i, chunk := range chunks {
		c.points[chunk.Id] = point{chunk: chunk, vector: vectors[i]}
	}
	return nil
}

func (m *Index) Search(_ context.Context, name string, vector []float32, limit uint64, scoreThreshold float32) ([]commonModels.ScoredChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, commonModels.ErrNotFound)
	}

	hits := make([]commonModels.ScoredChunk, 0, len(c.points))
	for _, p := range c.points {
		score := cosine(vector, p.vector)
		if scoreThreshold > 0 && score < scoreThreshold {
			continue
		}
		hits = append(hits, commonModels.ScoredChunk{Chunk: p.chunk, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Id < hits[j].Id
	})
	if uint64(len(hits)) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
