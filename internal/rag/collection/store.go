// Package collection manages named, persistent document collections: their
// registry entry, their vector index and their on-disk document cache.
package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag/embedding"
	"github.com/akolanti/delphi/internal/rag/vectorDB"
	"github.com/akolanti/delphi/pkg/logger_i"
)

// UnselectedCollection is the first entry of ListForSelection.
const UnselectedCollection = "-- select a collection --"

type Store struct {
	registry  Registry
	index     vectorDB.DataProcessor
	embedder  embedding.Embedder
	docsRoot  string
	batchSize int
	logger    *logger_i.Logger
}

func NewStore(registry Registry, index vectorDB.DataProcessor, embedder embedding.Embedder, docsRoot string) *Store {
	if docsRoot == "" {
		docsRoot = config.DocsRoot
	}
	return &Store{
		registry:  registry,
		index:     index,
		embedder:  embedder,
		docsRoot:  docsRoot,
		batchSize: config.EmbeddingBatchSize,
		logger:    logger_i.NewLogger("Collection Store"),
	}
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || name == UnselectedCollection {
		return errors.New("collection name is empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("collection name %q is not a valid directory name", name)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, name string, owner string, createdAt time.Time) (commonModels.CollectionInfo, error) {
	log := s.logger.WithTrace(ctx).With("collection", name)
	if err := ValidateName(name); err != nil {
		return commonModels.CollectionInfo{}, err
	}

	info := commonModels.CollectionInfo{
		Name:               name,
		Owner:              owner,
		CreatedAt:          createdAt.UTC(),
		EmbeddingModel:     s.embedder.ModelName(),
		EmbeddingDimension: s.embedder.Dimension(),
	}
	if err := s.registry.Add(ctx, info); err != nil {
		return commonModels.CollectionInfo{}, err
	}

	if err := s.index.CreateCollection(ctx, name, uint64(info.EmbeddingDimension)); err != nil {
		log.Error("creating vector collection failed, rolling back registry entry", "error", err)
		if rbErr := s.registry.Delete(ctx, name); rbErr != nil {
			log.Error("registry rollback failed", "error", rbErr)
		}
		return commonModels.CollectionInfo{}, fmt.Errorf("creating collection %q: %w", name, err)
	}

	log.Info("collection created", "owner", owner, "embeddingModel", info.EmbeddingModel)
	return info, nil
}

// GetOrCreate returns the existing collection unchanged, or creates it.
func (s *Store) GetOrCreate(ctx context.Context, name string, owner string, createdAt time.Time) (commonModels.CollectionInfo, error) {
	info, err := s.registry.Get(ctx, name)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, commonModels.ErrNotFound) {
		return commonModels.CollectionInfo{}, err
	}

	info, err = s.Create(ctx, name, owner, createdAt)
	if errors.Is(err, commonModels.ErrAlreadyExists) {
		// lost a race against another creator
		return s.registry.Get(ctx, name)
	}
	return info, err
}

func (s *Store) Get(ctx context.Context, name string) (commonModels.CollectionInfo, error) {
	return s.registry.Get(ctx, name)
}

// List returns the collection names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.registry.Names(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// ListForSelection is List with UnselectedCollection in front.
func (s *Store) ListForSelection(ctx context.Context) ([]string, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{UnselectedCollection}, names...), nil
}

// Delete removes the vector index, then the registry entry, then the document
// cache. Only the owner or an admin may delete. A cache directory that cannot
// be removed is logged and left behind.
func (s *Store) Delete(ctx context.Context, name string, requester commonModels.Identity) error {
	log := s.logger.WithTrace(ctx).With("collection", name, "requester", requester.Username)

	info, err := s.registry.Get(ctx, name)
	if err != nil {
		return err
	}
	if !requester.IsAdmin && requester.Username != info.Owner {
		log.Warn("delete refused, requester is neither owner nor admin", "owner", info.Owner)
		return fmt.Errorf("deleting collection %q: %w", name, commonModels.ErrForbidden)
	}

	if err = s.index.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("deleting vector collection %q: %w", name, err)
	}
	if err = s.registry.Delete(ctx, name); err != nil {
		return fmt.Errorf("deleting registry entry %q: %w", name, err)
	}
	if err = os.RemoveAll(s.CacheDir(name)); err != nil {
		log.Warn("could not remove document cache", "dir", s.CacheDir(name), "error", err)
	}

	log.Info("collection deleted")
	return nil
}

func (s *Store) CacheDir(name string) string {
	return filepath.Join(s.docsRoot, name)
}

// open resolves name and checks that it was built with the embedder in use.
func (s *Store) open(ctx context.Context, name string) (commonModels.CollectionInfo, error) {
	info, err := s.registry.Get(ctx, name)
	if err != nil {
		return info, err
	}
	if info.EmbeddingModel != "" && info.EmbeddingModel != s.embedder.ModelName() {
		return info, fmt.Errorf("collection %q uses %s, embedder is %s: %w",
			name, info.EmbeddingModel, s.embedder.ModelName(), commonModels.ErrEmbeddingMismatch)
	}
	return info, nil
}

// Upsert embeds the chunks in batches and writes them with a single index call.
func (s *Store) Upsert(ctx context.Context, name string, chunks []commonModels.Chunk) error {
	log := s.logger.WithTrace(ctx).With("collection", name)
	info, err := s.open(ctx, name)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	isHugeDataSet := len(chunks) > config.HugeDataSetChunkCount
	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += s.batchSize {
		end := min(i+s.batchSize, len(chunks))

		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Content)
		}

		log.Debug("embedding batch", "from", i, "to", end)
		start := time.Now()
		batch, err := s.embedder.BatchEmbedding(ctx, texts, isHugeDataSet)
		metrics.CaptureExecutionMetrics("embedding", time.Since(start))
		if err != nil {
			return fmt.Errorf("embedding batch %d-%d: %w", i, end, err)
		}
		if len(batch) != len(texts) {
			return fmt.Errorf("embedding batch %d-%d returned %d vectors", i, end, len(batch))
		}
		vectors = append(vectors, batch...)
	}

	// the index may have been dropped behind our back
	if err = s.index.CreateCollection(ctx, name, uint64(info.EmbeddingDimension)); err != nil {
		return err
	}

	start := time.Now()
	err = s.index.UpsertBatch(ctx, name, chunks, vectors)
	metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start))
	if err != nil {
		return err
	}
	metrics.CaptureIngestedChunks(name, len(chunks))
	log.Info("upserted chunks", "count", len(chunks))
	return nil
}

// Query returns the topK chunks most similar to text. A zero scoreThreshold disables the cut-off.
func (s *Store) Query(ctx context.Context, name string, text string, topK int, scoreThreshold float32) ([]commonModels.ScoredChunk, error) {
	if _, err := s.open(ctx, name); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = config.RetrievalTopK
	}

	start := time.Now()
	vector, err := s.embedder.GetEmbedding(ctx, text)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	start = time.Now()
	hits, err := s.index.Search(ctx, name, vector, uint64(topK), scoreThreshold)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", name, err)
	}
	return hits, nil
}
