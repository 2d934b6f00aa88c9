// Package ingest turns uploaded documents into tagged chunks and writes them
// into a collection.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag/chunker"
	"github.com/akolanti/delphi/pkg/logger_i"
)

// Upload is one document handed in for ingestion.
type Upload struct {
	Name string
	Data []byte
}

// Result reports one Ingest call. Ok is true only when every document that
// was not skipped has been cached and upserted.
type Result struct {
	Ok       bool     `json:"ok"`
	Err      error    `json:"-"`
	Skipped  []string `json:"skipped,omitempty"`
	Ingested []string `json:"ingested,omitempty"`
	Chunks   int      `json:"chunks"`
}

// CollectionStore is the part of the collection store ingestion writes to.
type CollectionStore interface {
	Get(ctx context.Context, name string) (commonModels.CollectionInfo, error)
	Upsert(ctx context.Context, name string, chunks []commonModels.Chunk) error
	CacheDir(name string) string
}

type extractFunc func(path string, source string, log *logger_i.Logger) ([]commonModels.Page, error)

type Pipeline struct {
	store    CollectionStore
	splitter *chunker.Splitter
	extract  extractFunc
	logger   *logger_i.Logger
}

func NewPipeline(store CollectionStore, splitter *chunker.Splitter) *Pipeline {
	return &Pipeline{
		store:    store,
		splitter: splitter,
		extract:  extractPages,
		logger:   logger_i.NewLogger("Document Ingestion"),
	}
}

// Ingest adds docs to collection. A document whose name is already in the
// collection's cache directory is skipped. All chunks of the batch are written
// with a single upsert, so the index is either updated for the whole batch or
// not at all. Raw files already written to the cache stay there on failure.
func (p *Pipeline) Ingest(ctx context.Context, docs []Upload, collection string) Result {
	log := p.logger.WithTrace(ctx).With("collection", collection)
	res := Result{}

	fail := func(err error) Result {
		log.Error("ingestion failed", "error", err)
		res.Ok = false
		res.Err = err
		metrics.CaptureIngestedDocuments("failed", len(docs)-len(res.Skipped))
		return res
	}

	if _, err := p.store.Get(ctx, collection); err != nil {
		return fail(err)
	}

	dir := p.store.CacheDir(collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(fmt.Errorf("creating document cache: %w", err))
	}
	cached, err := listCached(dir)
	if err != nil {
		return fail(err)
	}

	var fresh []Upload
	for _, doc := range docs {
		name := filepath.Base(doc.Name)
		if name == "." || name == string(filepath.Separator) {
			return fail(fmt.Errorf("%w: empty document name", commonModels.ErrUnsupportedType))
		}
		if cached[name] {
			log.Info("document already exists in the store, skipping", "document", name)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		cached[name] = true
		fresh = append(fresh, Upload{Name: name, Data: doc.Data})
	}
	metrics.CaptureIngestedDocuments("skipped", len(res.Skipped))

	// refuse the batch before anything is written
	for _, doc := range fresh {
		if getDocType(doc.Name) == commonModels.ERR {
			return fail(fmt.Errorf("%w: %s", commonModels.ErrUnsupportedType, doc.Name))
		}
	}

	var chunks []commonModels.Chunk
	for _, doc := range fresh {
		if err = ctx.Err(); err != nil {
			return fail(err)
		}
		docChunks, err := p.processDocument(dir, doc, log)
		if err != nil {
			return fail(err)
		}
		log.Debug("document chunked", "document", doc.Name, "chunks", len(docChunks))
		chunks = append(chunks, docChunks...)
	}

	if len(chunks) > 0 {
		if err = p.store.Upsert(ctx, collection, chunks); err != nil {
			return fail(fmt.Errorf("%w: %w", commonModels.ErrUpsertFailed, err))
		}
	}

	for _, doc := range fresh {
		res.Ingested = append(res.Ingested, doc.Name)
	}
	res.Chunks = len(chunks)
	res.Ok = true
	metrics.CaptureIngestedDocuments("ingested", len(res.Ingested))
	log.Info("ingestion complete", "ingested", len(res.Ingested), "skipped", len(res.Skipped), "chunks", res.Chunks)
	return res
}

func (p *Pipeline) processDocument(dir string, doc Upload, log *logger_i.Logger) ([]commonModels.Chunk, error) {
	path := filepath.Join(dir, doc.Name)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return nil, fmt.Errorf("caching %s: %w", doc.Name, err)
	}

	pages, err := p.extract(path, doc.Name, log)
	if err != nil {
		if errors.Is(err, commonModels.ErrUnsupportedType) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", commonModels.ErrExtractionFailed, doc.Name, err)
	}

	var chunks []commonModels.Chunk
	for _, page := range pages {
		chunks = append(chunks, TagChunks(page, p.splitter.Chunks(page.Content))...)
	}
	return chunks, nil
}

func listCached(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing document cache: %w", err)
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[e.Name()] = true
		}
	}
	return names, nil
}
