package llm

import (
	"context"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// Request is one chat completion. Messages are in chronological order and
// must not contain system messages; the system instruction goes into System.
type Request struct {
	System      string
	Messages    []commonModels.ChatMessage
	Temperature float32
	MaxTokens   int32
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	ModelName() string
}
