package vectorDB

import (
	"context"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// DataProcessor is a vector index holding one named collection per document collection.
type DataProcessor interface {
	CreateCollection(ctx context.Context, collectionName string, dimension uint64) error
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	DeleteCollection(ctx context.Context, collectionName string) error

	// UpsertBatch writes chunks and their vectors; an existing chunk id is overwritten.
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.Chunk, vectors [][]float32) error
	// Search returns up to limit chunks by descending similarity. A zero scoreThreshold disables the cut-off.
	Search(ctx context.Context, collectionName string, vector []float32, limit uint64, scoreThreshold float32) ([]commonModels.ScoredChunk, error)
}
