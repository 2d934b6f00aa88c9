package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/data/redisStore"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
)

const (
	collectionSetKey    = "collections"
	collectionKeyPrefix = "collection:"
)

// RedisCollectionRegistry keeps one hash per collection and a set of all names.
type RedisCollectionRegistry struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisCollectionRegistry(ctx context.Context) *RedisCollectionRegistry {
	s := redisStore.GetRedisStore(ctx, config.RedisCollectionStore)
	if s == nil {
		return nil
	}
	return NewRedisCollectionRegistry(s)
}

func NewRedisCollectionRegistry(s *redisStore.Store) *RedisCollectionRegistry {
	return &RedisCollectionRegistry{
		store:  s,
		logger: logger_i.NewLogger("CollectionRegistry"),
	}
}

func collectionKey(name string) string {
	return collectionKeyPrefix + name
}

func (r *RedisCollectionRegistry) Add(ctx context.Context, info commonModels.CollectionInfo) error {
	log := r.logger.WithTrace(ctx).With("collection", info.Name)

	added, err := r.store.SetAddWithHash(ctx, collectionSetKey, info.Name, collectionKey(info.Name), map[string]interface{}{
		"name":                info.Name,
		"owner":               info.Owner,
		"created_at":          info.CreatedAt.UTC().Format(time.RFC3339Nano),
		"embedding_model":     info.EmbeddingModel,
		"embedding_dimension": info.EmbeddingDimension,
	})
	if err != nil {
		log.Error("registering collection failed", "error", err)
		return err
	}
	if !added {
		return fmt.Errorf("collection %q: %w", info.Name, commonModels.ErrAlreadyExists)
	}
	log.Debug("collection registered")
	return nil
}

func (r *RedisCollectionRegistry) Get(ctx context.Context, name string) (commonModels.CollectionInfo, error) {
	fields, err := r.store.HashGetAll(ctx, collectionKey(name))
	if err != nil {
		return commonModels.CollectionInfo{}, err
	}
	if len(fields) == 0 {
		return commonModels.CollectionInfo{}, fmt.Errorf("collection %q: %w", name, commonModels.ErrNotFound)
	}

	info := commonModels.CollectionInfo{
		Name:           name,
		Owner:          fields["owner"],
		EmbeddingModel: fields["embedding_model"],
	}
	if info.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		r.logger.WithTrace(ctx).Warn("unreadable created_at", "collection", name, "value", fields["created_at"])
	}
	if dim := fields["embedding_dimension"]; dim != "" {
		info.EmbeddingDimension, _ = strconv.Atoi(dim)
	}
	return info, nil
}

func (r *RedisCollectionRegistry) Delete(ctx context.Context, name string) error {
	return r.store.DelAndSetRemove(ctx, collectionKey(name), collectionSetKey, name)
}

func (r *RedisCollectionRegistry) Names(ctx context.Context) ([]string, error) {
	return r.store.SetMembers(ctx, collectionSetKey)
}
