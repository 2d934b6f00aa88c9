package collection

import (
	"context"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// Registry keeps the collection-level metadata the vector index cannot hold:
// owner, creation time and the embedding model the collection is bound to.
type Registry interface {
	// Add fails with commonModels.ErrAlreadyExists when the name is taken.
	Add(ctx context.Context, info commonModels.CollectionInfo) error
	// Get fails with commonModels.ErrNotFound when the name is unknown.
	Get(ctx context.Context, name string) (commonModels.CollectionInfo, error)
	Delete(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
}
