package rag_test

import (
	"context"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/rag/conversation"
	"github.com/akolanti/delphi/internal/rag/ingest"
)

// MockAsker implements rag.Asker
type MockAsker struct {
	OnAsk func(ctx context.Context, question string, session conversation.Session) (conversation.Answer, conversation.Session, error)
}

func (m *MockAsker) Ask(ctx context.Context, q string, s conversation.Session) (conversation.Answer, conversation.Session, error) {
	if m.OnAsk != nil {
		return m.OnAsk(ctx, q, s)
	}
	s.History = append(s.History,
		commonModels.ChatMessage{Role: commonModels.RoleUser, Content: q},
		commonModels.ChatMessage{Role: commonModels.RoleAssistant, Content: "mocked answer"},
	)
	return conversation.Answer{Text: "mocked answer", StandaloneQuestion: q}, s, nil
}

// MockIngester implements rag.Ingester
type MockIngester struct {
	OnIngest func(ctx context.Context, docs []ingest.Upload, collection string) ingest.Result
}

func (m *MockIngester) Ingest(ctx context.Context, docs []ingest.Upload, collection string) ingest.Result {
	if m.OnIngest != nil {
		return m.OnIngest(ctx, docs, collection)
	}
	res := ingest.Result{Ok: true}
	for _, d := range docs {
		res.Ingested = append(res.Ingested, d.Name)
	}
	return res
}

// MockCollections implements rag.CollectionLookup
type MockCollections struct {
	OnGet func(ctx context.Context, name string) (commonModels.CollectionInfo, error)
}

func (m *MockCollections) Get(ctx context.Context, name string) (commonModels.CollectionInfo, error) {
	if m.OnGet != nil {
		return m.OnGet(ctx, name)
	}
	return commonModels.CollectionInfo{Name: name}, nil
}
