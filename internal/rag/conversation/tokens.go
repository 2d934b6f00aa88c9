package conversation

import (
	"sync"
	"unicode/utf8"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const (
	fallbackEncoding = "cl100k_base"
	tokensPerMessage = 4
	replyPriming     = 3
)

// the encodings ship with the binary so counting works without network access
var useOfflineEncodings sync.Once

type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	mu  sync.Mutex
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enc.Encode(text, nil, nil))
}

// approxCounter is used when no encoding could be loaded at all.
type approxCounter struct{}

func (approxCounter) Count(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// NewTokenCounter returns a counter with the encoding of model, falling back
// to cl100k_base for unknown models.
func NewTokenCounter(model string) TokenCounter {
	log := logger_i.NewLogger("Token Counter")
	useOfflineEncodings.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		log.Warn("unknown tokenizer model, using default encoding", "model", model, "encoding", fallbackEncoding)
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		log.Error("could not load the embedded encoding, estimating tokens from length", "encoding", fallbackEncoding, "error", err)
		return approxCounter{}
	}
	return &tiktokenCounter{enc: enc}
}

// EstimateTokens is the chat-message cost of history: every message costs
// its role and content plus a fixed overhead, and the reply is primed once.
func EstimateTokens(counter TokenCounter, history []commonModels.ChatMessage) int {
	total := 0
	for _, m := range history {
		total += tokensPerMessage + counter.Count(string(m.Role)) + counter.Count(m.Content)
	}
	return total + replyPriming
}
