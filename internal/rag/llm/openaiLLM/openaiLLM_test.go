package openaiLLM

import (
	"testing"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/rag/llm"
)

func TestToMessages(t *testing.T) {
	msgs := toMessages(llm.Request{
		System: "answer from context",
		Messages: []commonModels.ChatMessage{
			{Role: commonModels.RoleUser, Content: "q1"},
			{Role: commonModels.RoleAssistant, Content: "a1"},
			{Role: commonModels.RoleUser, Content: "q2"},
		},
	})

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].OfSystem == nil {
		t.Error("first message should be the system instruction")
	}
	if msgs[1].OfUser == nil || msgs[2].OfAssistant == nil || msgs[3].OfUser == nil {
		t.Errorf("roles out of order: %+v", msgs)
	}
}

func TestToMessages_NoSystem(t *testing.T) {
	msgs := toMessages(llm.Request{Messages: []commonModels.ChatMessage{{Role: commonModels.RoleUser, Content: "hi"}}})
	if len(msgs) != 1 || msgs[0].OfUser == nil {
		t.Errorf("unexpected messages %+v", msgs)
	}
}
