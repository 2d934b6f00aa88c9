// Package app wires settings into the collection store, the ingestion
// pipeline, the conversation engine and the stores they share. cmd/api and
// cmd/delphictl both build on it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/delphi/internal/auth"
	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/data/redisStore"
	"github.com/akolanti/delphi/internal/data/store"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/mcpserver"
	"github.com/akolanti/delphi/internal/rag/chunker"
	"github.com/akolanti/delphi/internal/rag/collection"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/akolanti/delphi/internal/rag/embedding"
	"github.com/akolanti/delphi/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/delphi/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/delphi/internal/rag/ingest"
	"github.com/akolanti/delphi/internal/rag/llm"
	"github.com/akolanti/delphi/internal/rag/llm/gemini"
	"github.com/akolanti/delphi/internal/rag/llm/openaiLLM"
	"github.com/akolanti/delphi/internal/rag/vectorDB"
	"github.com/akolanti/delphi/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/delphi/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var ErrUnknownProvider = errors.New("unknown provider")

type App struct {
	Settings    *config.Settings
	Registry    collection.Registry
	Collections *collection.Store
	Pipeline    *ingest.Pipeline
	Engine      *conversation.Engine
	Sessions    conversation.SessionStore
	Jobs        jobModel.JobStore
	Embedder    embedding.Embedder
	LLM         llm.Provider
}

// Build connects every backing service named in s. Redis and Qdrant fall back
// to in-memory implementations when they are unreachable and the fallback is
// enabled; a missing model provider is an error.
func Build(ctx context.Context, s *config.Settings) (*App, error) {
	logger := logger_i.NewLogger("app")
	a := &App{Settings: s}

	redisStore.Configure(s.RedisAddr, s.RedisPassword)
	if err := a.buildStores(ctx, logger); err != nil {
		return nil, err
	}

	index, err := buildIndex(ctx, s, logger)
	if err != nil {
		return nil, err
	}

	if a.Embedder, err = buildEmbedder(ctx, s); err != nil {
		return nil, err
	}
	if a.LLM, err = buildLLM(ctx, s); err != nil {
		return nil, err
	}

	splitter, err := chunker.NewSplitter(s.ChunkSize, s.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	a.Collections = collection.NewStore(a.Registry, index, a.Embedder, s.DocsRoot)
	a.Pipeline = ingest.NewPipeline(a.Collections, splitter)
	a.Engine = conversation.NewEngine(
		conversation.NewLLMRewriter(a.LLM),
		&conversation.StoreRetriever{Store: a.Collections, TopK: s.RetrievalTopK, ScoreThreshold: s.RetrievalScoreThreshold},
		conversation.NewLLMAnswerer(a.LLM),
		conversation.NewTokenCounter(s.ChatModel),
		s.HistoryTokenBudget,
	)

	logger.Info("services ready",
		"llm", s.LLMProvider, "chatModel", a.LLM.ModelName(),
		"embeddings", s.EmbeddingProvider, "embeddingModel", a.Embedder.ModelName(),
		"chunkSize", s.ChunkSize, "chunkOverlap", s.ChunkOverlap)
	return a, nil
}

// Authenticator loads the credentials file. It returns nil when auth is bypassed.
func (a *App) Authenticator() (*auth.Authenticator, error) {
	if a.Settings.NoAuthBypass {
		return nil, nil
	}
	return auth.Load(a.Settings.CredentialsFile, a.Settings.AdminUser)
}

func (a *App) MCPServer() (*mcpserver.Server, error) {
	return mcpserver.NewServer(a.Collections, a.Settings.RetrievalTopK, a.Settings.RetrievalScoreThreshold)
}

func (a *App) buildStores(ctx context.Context, logger *logger_i.Logger) error {
	registry := store.GetRedisCollectionRegistry(ctx)
	sessions := store.GetRedisSessionStore(ctx)
	jobs := store.GetRedisJobStore(ctx)

	if registry != nil && sessions != nil && jobs != nil {
		a.Registry, a.Sessions, a.Jobs = registry, sessions, jobs
		return nil
	}
	if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
		return fmt.Errorf("redis at %s is offline", a.Settings.RedisAddr)
	}
	logger.Error("Redis stores are offline, using in-memory stores")
	a.Registry = store.InitInMemoryCollectionRegistry()
	a.Sessions = store.InitInMemorySessionStore()
	a.Jobs = store.InitInMemoryJobStore()
	return nil
}

func buildIndex(ctx context.Context, s *config.Settings, logger *logger_i.Logger) (vectorDB.DataProcessor, error) {
	if holder := qdrantDB.GetQuadrantClient(ctx, s.QdrantHost, s.QdrantPort, s.QdrantAPIKey); holder != nil {
		return holder, nil
	}
	if !config.FALLBACK_QDRANT_TO_MEMORY {
		return nil, fmt.Errorf("qdrant at %s:%d is offline", s.QdrantHost, s.QdrantPort)
	}
	logger.Error("Qdrant is offline, using an in-memory vector index")
	return memoryDB.NewIndex(), nil
}

func buildEmbedder(ctx context.Context, s *config.Settings) (embedding.Embedder, error) {
	var e embedding.Embedder
	switch s.EmbeddingProvider {
	case config.LLMProviderOpenAI:
		e = openaiEmbedding.GetOpenAIEmbeddingClient(s.EmbeddingModel, s.OpenAIKey)
	case config.LLMProviderGemini:
		e = googleEmbedding.GetGoogleEmbeddingClient(ctx, s.EmbeddingModel, s.GoogleKey)
	default:
		return nil, fmt.Errorf("%w: embeddings %q", ErrUnknownProvider, s.EmbeddingProvider)
	}
	if e == nil {
		return nil, fmt.Errorf("embedding provider %q is unavailable", s.EmbeddingProvider)
	}
	return e, nil
}

func buildLLM(ctx context.Context, s *config.Settings) (llm.Provider, error) {
	var p llm.Provider
	switch s.LLMProvider {
	case config.LLMProviderOpenAI:
		p = openaiLLM.GetOpenAIClient(s.ChatModel, s.OpenAIKey)
	case config.LLMProviderGemini:
		p = gemini.GetGeminiClient(ctx, s.ChatModel, s.GoogleKey)
	default:
		return nil, fmt.Errorf("%w: llm %q", ErrUnknownProvider, s.LLMProvider)
	}
	if p == nil {
		return nil, fmt.Errorf("llm provider %q is unavailable", s.LLMProvider)
	}
	return p, nil
}
