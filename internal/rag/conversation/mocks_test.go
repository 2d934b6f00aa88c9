package conversation

import (
	"context"
	"strings"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// wordCounter counts whitespace separated words, which keeps budgets easy to reason about.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

type mockRewriter struct {
	rewriteFunc func(ctx context.Context, history []commonModels.ChatMessage, question string) (string, error)
	calls       int
}

func (m *mockRewriter) Rewrite(ctx context.Context, history []commonModels.ChatMessage, question string) (string, error) {
	m.calls++
	return m.rewriteFunc(ctx, history, question)
}

type mockRetriever struct {
	retrieveFunc func(ctx context.Context, collection string, query string) ([]commonModels.ScoredChunk, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, collection string, query string) ([]commonModels.ScoredChunk, error) {
	return m.retrieveFunc(ctx, collection, query)
}

type mockAnswerer struct {
	answerFunc func(ctx context.Context, question string, chunks []commonModels.ScoredChunk) (string, error)
	calls      int
}

func (m *mockAnswerer) Answer(ctx context.Context, question string, chunks []commonModels.ScoredChunk) (string, error) {
	m.calls++
	return m.answerFunc(ctx, question, chunks)
}

func pair(q, a string) []commonModels.ChatMessage {
	return []commonModels.ChatMessage{
		{Role: commonModels.RoleUser, Content: q},
		{Role: commonModels.RoleAssistant, Content: a},
	}
}
