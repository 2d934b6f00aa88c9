package conversation

import (
	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// TruncateHistory drops the oldest (question, answer) pairs until the history
// fits budget. The newest pair is always kept, so a single exchange larger than
// the budget is returned as is.
func TruncateHistory(counter TokenCounter, history []commonModels.ChatMessage, budget int) []commonModels.ChatMessage {
	for len(history) > 2 && EstimateTokens(counter, history) > budget {
		drop := 2
		if history[0].Role != commonModels.RoleUser || history[1].Role != commonModels.RoleAssistant {
			// not a clean pair, realign on the next message
			drop = 1
		}
		history = history[drop:]
	}
	return history
}
