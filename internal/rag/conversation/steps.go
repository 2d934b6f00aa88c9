package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/internal/rag/llm"
)

// Rewriter turns a follow-up question into one that stands on its own. It
// sees only prior turns, never retrieved documents.
type Rewriter interface {
	Rewrite(ctx context.Context, history []commonModels.ChatMessage, question string) (string, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, collection string, query string) ([]commonModels.ScoredChunk, error)
}

type Answerer interface {
	Answer(ctx context.Context, question string, chunks []commonModels.ScoredChunk) (string, error)
}

type LLMRewriter struct {
	Provider    llm.Provider
	Temperature float32
	MaxTokens   int32
}

func NewLLMRewriter(p llm.Provider) *LLMRewriter {
	return &LLMRewriter{Provider: p, Temperature: config.RewriteTemperature, MaxTokens: config.RewriteMaxTokens}
}

func (r *LLMRewriter) Rewrite(ctx context.Context, history []commonModels.ChatMessage, question string) (string, error) {
	start := time.Now()
	out, err := r.Provider.Generate(ctx, llm.Request{
		Messages:    []commonModels.ChatMessage{{Role: commonModels.RoleUser, Content: buildRewritePrompt(history, question)}},
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})
	metrics.CaptureExecutionMetrics("llm_rewrite", time.Since(start))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

type LLMAnswerer struct {
	Provider    llm.Provider
	Temperature float32
	MaxTokens   int32
}

func NewLLMAnswerer(p llm.Provider) *LLMAnswerer {
	return &LLMAnswerer{Provider: p, Temperature: config.AnswerTemperature, MaxTokens: config.AnswerMaxTokens}
}

func (a *LLMAnswerer) Answer(ctx context.Context, question string, chunks []commonModels.ScoredChunk) (string, error) {
	start := time.Now()
	out, err := a.Provider.Generate(ctx, llm.Request{
		System:      answerInstruction,
		Messages:    []commonModels.ChatMessage{{Role: commonModels.RoleUser, Content: buildAnswerPrompt(question, chunks)}},
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	})
	metrics.CaptureExecutionMetrics("llm_answer", time.Since(start))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Querier is the part of the collection store retrieval needs.
type Querier interface {
	Query(ctx context.Context, name string, text string, topK int, scoreThreshold float32) ([]commonModels.ScoredChunk, error)
}

type StoreRetriever struct {
	Store          Querier
	TopK           int
	ScoreThreshold float32
}

func (r *StoreRetriever) Retrieve(ctx context.Context, collection string, query string) ([]commonModels.ScoredChunk, error) {
	return r.Store.Query(ctx, collection, query, r.TopK, r.ScoreThreshold)
}
