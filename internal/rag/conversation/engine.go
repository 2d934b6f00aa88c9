// Package conversation answers questions over a bound collection while
// keeping the chat history of the session within a token budget.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
)

type Answer struct {
	Text string `json:"answer"`
	// StandaloneQuestion is what retrieval actually searched for.
	StandaloneQuestion string                     `json:"standalone_question"`
	Sources            []commonModels.ScoredChunk `json:"sources"`
}

type Engine struct {
	rewriter  Rewriter
	retriever Retriever
	answerer  Answerer
	counter   TokenCounter
	budget    int
	now       func() time.Time
	logger    *logger_i.Logger
}

func NewEngine(rewriter Rewriter, retriever Retriever, answerer Answerer, counter TokenCounter, budget int) *Engine {
	if budget <= 0 {
		budget = config.HistoryTokenBudget
	}
	return &Engine{
		rewriter:  rewriter,
		retriever: retriever,
		answerer:  answerer,
		counter:   counter,
		budget:    budget,
		now:       time.Now,
		logger:    logger_i.NewLogger("Conversation Engine"),
	}
}

// Ask runs one exchange: truncate, rewrite, retrieve, answer, record.
// The session is returned unchanged on error.
func (e *Engine) Ask(ctx context.Context, question string, session Session) (Answer, Session, error) {
	log := e.logger.WithTrace(ctx).With("session", session.ID)
	if !session.Bound() {
		return Answer{}, session, commonModels.ErrNotBound
	}
	log = log.With("collection", session.Collection)
	next := session.clone()

	history := TruncateHistory(e.counter, next.History, e.budget)
	if dropped := len(next.History) - len(history); dropped > 0 {
		log.Debug("history truncated before rewrite", "droppedMessages", dropped)
	}

	standalone := question
	if len(history) > 0 {
		rewritten, err := e.rewriter.Rewrite(ctx, history, question)
		if err != nil {
			log.Error("rewrite failed", "error", err)
			return Answer{}, session, fmt.Errorf("%w: rewrite: %w", commonModels.ErrGenerationFailed, err)
		}
		if strings.TrimSpace(rewritten) != "" {
			standalone = rewritten
		}
		log.Debug("question rewritten", "standalone", standalone)
	}

	chunks, err := e.retriever.Retrieve(ctx, session.Collection, standalone)
	if err != nil {
		log.Error("retrieval failed", "error", err)
		return Answer{}, session, fmt.Errorf("%w: retrieve: %w", commonModels.ErrGenerationFailed, err)
	}

	text := FallbackAnswer
	if len(chunks) > 0 {
		text, err = e.answerer.Answer(ctx, standalone, chunks)
		if err != nil {
			log.Error("answer failed", "error", err)
			return Answer{}, session, fmt.Errorf("%w: answer: %w", commonModels.ErrGenerationFailed, err)
		}
	} else {
		log.Info("nothing retrieved, answering with the fallback")
	}

	updated := make([]commonModels.ChatMessage, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		commonModels.ChatMessage{Role: commonModels.RoleUser, Content: question},
		commonModels.ChatMessage{Role: commonModels.RoleAssistant, Content: text},
	)
	next.History = TruncateHistory(e.counter, updated, e.budget)
	next.UpdatedAt = e.now().UTC()

	return Answer{Text: text, StandaloneQuestion: standalone, Sources: chunks}, next, nil
}
