package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

type InMemoryCollectionRegistry struct {
	mu          sync.RWMutex
	collections map[string]commonModels.CollectionInfo
}

func InitInMemoryCollectionRegistry() *InMemoryCollectionRegistry {
	return &InMemoryCollectionRegistry{
		collections: make(map[string]commonModels.CollectionInfo),
	}
}

func (r *InMemoryCollectionRegistry) Add(_ context.Context, info commonModels.CollectionInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[info.Name]; ok {
		return fmt.Errorf("collection %q: %w", info.Name, commonModels.ErrAlreadyExists)
	}
	r.collections[info.Name] = info
	return nil
}

func (r *InMemoryCollectionRegistry) Get(_ context.Context, name string) (commonModels.CollectionInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.collections[name]
	if !ok {
		return info, fmt.Errorf("collection %q: %w", name, commonModels.ErrNotFound)
	}
	return info, nil
}

func (r *InMemoryCollectionRegistry) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collections, name)
	return nil
}

func (r *InMemoryCollectionRegistry) Names(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	return names, nil
}
