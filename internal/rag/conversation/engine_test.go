package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var someChunks = []commonModels.ScoredChunk{
	{Chunk: commonModels.Chunk{Id: "doc.pdf_0_0", Content: "X is a letter.", Source: "doc.pdf"}, Score: 0.9},
}

func newTestEngine(rw *mockRewriter, rt *mockRetriever, an *mockAnswerer, budget int) *Engine {
	e := NewEngine(rw, rt, an, wordCounter{}, budget)
	e.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e
}

func echoRewriter() *mockRewriter {
	return &mockRewriter{rewriteFunc: func(_ context.Context, _ []commonModels.ChatMessage, q string) (string, error) {
		return "standalone: " + q, nil
	}}
}

func fixedRetriever(chunks []commonModels.ScoredChunk) *mockRetriever {
	return &mockRetriever{retrieveFunc: func(context.Context, string, string) ([]commonModels.ScoredChunk, error) {
		return chunks, nil
	}}
}

func fixedAnswerer(answer string) *mockAnswerer {
	return &mockAnswerer{answerFunc: func(context.Context, string, []commonModels.ScoredChunk) (string, error) {
		return answer, nil
	}}
}

func boundSession() Session {
	return NewSession("s1", "alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Bind("A")
}

func TestAsk_Unbound(t *testing.T) {
	an := fixedAnswerer("nope")
	e := newTestEngine(echoRewriter(), fixedRetriever(someChunks), an, 3500)

	s := NewSession("s1", "alice", time.Now())
	_, got, err := e.Ask(context.Background(), "What is X?", s)

	assert.ErrorIs(t, err, commonModels.ErrNotBound)
	assert.Equal(t, s, got)
	assert.Zero(t, an.calls)
}

func TestAsk_FirstQuestionSkipsRewrite(t *testing.T) {
	rw := echoRewriter()
	var searched string
	rt := &mockRetriever{retrieveFunc: func(_ context.Context, collection, query string) ([]commonModels.ScoredChunk, error) {
		assert.Equal(t, "A", collection)
		searched = query
		return someChunks, nil
	}}
	e := newTestEngine(rw, rt, fixedAnswerer("X is a letter [doc.pdf]."), 3500)

	ans, s, err := e.Ask(context.Background(), "What is X?", boundSession())
	require.NoError(t, err)

	assert.Zero(t, rw.calls)
	assert.Equal(t, "What is X?", searched)
	assert.Equal(t, "X is a letter [doc.pdf].", ans.Text)
	assert.Equal(t, someChunks, ans.Sources)
	assert.Equal(t, pair("What is X?", "X is a letter [doc.pdf]."), s.History)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), s.UpdatedAt)
}

func TestAsk_FollowUpIsRewritten(t *testing.T) {
	rw := echoRewriter()
	var answered string
	an := &mockAnswerer{answerFunc: func(_ context.Context, q string, _ []commonModels.ScoredChunk) (string, error) {
		answered = q
		return "It is the 24th letter.", nil
	}}
	e := newTestEngine(rw, fixedRetriever(someChunks), an, 3500)

	s := boundSession()
	s.History = pair("What is X?", "X is a letter.")
	ans, next, err := e.Ask(context.Background(), "Which one?", s)
	require.NoError(t, err)

	assert.Equal(t, 1, rw.calls)
	assert.Equal(t, "standalone: Which one?", ans.StandaloneQuestion)
	assert.Equal(t, "standalone: Which one?", answered)
	require.Len(t, next.History, 4)
	// the user's own wording is what goes into history
	assert.Equal(t, "Which one?", next.History[2].Content)
	// input session untouched
	assert.Len(t, s.History, 2)
}

func TestAsk_NoMatchesAnswersWithFallback(t *testing.T) {
	an := fixedAnswerer("should not be called")
	e := newTestEngine(echoRewriter(), fixedRetriever(nil), an, 3500)

	ans, s, err := e.Ask(context.Background(), "What is X?", boundSession())
	require.NoError(t, err)

	assert.Contains(t, ans.Text, "I'm sorry, I don't know the answer to your question.")
	assert.Zero(t, an.calls)
	assert.Len(t, s.History, 2)
}

func TestAsk_Failures(t *testing.T) {
	boom := errors.New("service unavailable")
	tests := []struct {
		name string
		rw   *mockRewriter
		rt   *mockRetriever
		an   *mockAnswerer
	}{
		{
			name: "rewrite",
			rw: &mockRewriter{rewriteFunc: func(context.Context, []commonModels.ChatMessage, string) (string, error) {
				return "", boom
			}},
			rt: fixedRetriever(someChunks),
			an: fixedAnswerer("x"),
		},
		{
			name: "retrieve",
			rw:   echoRewriter(),
			rt: &mockRetriever{retrieveFunc: func(context.Context, string, string) ([]commonModels.ScoredChunk, error) {
				return nil, boom
			}},
			an: fixedAnswerer("x"),
		},
		{
			name: "answer",
			rw:   echoRewriter(),
			rt:   fixedRetriever(someChunks),
			an: &mockAnswerer{answerFunc: func(context.Context, string, []commonModels.ScoredChunk) (string, error) {
				return "", boom
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(tt.rw, tt.rt, tt.an, 3500)
			s := boundSession()
			s.History = pair("earlier", "reply")

			_, got, err := e.Ask(context.Background(), "What is X?", s)
			assert.ErrorIs(t, err, commonModels.ErrGenerationFailed)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, s, got)
		})
	}
}

func TestAsk_HistoryStaysWithinBudget(t *testing.T) {
	long := strings.Repeat("word ", 30)
	var seen []commonModels.ChatMessage
	rw := &mockRewriter{rewriteFunc: func(_ context.Context, h []commonModels.ChatMessage, q string) (string, error) {
		seen = h
		return q, nil
	}}
	budget := 150
	e := newTestEngine(rw, fixedRetriever(someChunks), fixedAnswerer(long), budget)

	s := boundSession()
	for i := 0; i < 6; i++ {
		var err error
		_, s, err = e.Ask(context.Background(), "question number "+string(rune('a'+i)), s)
		require.NoError(t, err)
		assert.LessOrEqual(t, EstimateTokens(wordCounter{}, s.History), budget)
		assert.LessOrEqual(t, EstimateTokens(wordCounter{}, seen), budget)
	}
	// newest exchange is always last
	assert.Equal(t, "question number f", s.History[len(s.History)-2].Content)
}

func TestAsk_OversizedExchangeIsKept(t *testing.T) {
	huge := strings.Repeat("word ", 500)
	e := newTestEngine(echoRewriter(), fixedRetriever(someChunks), fixedAnswerer(huge), 100)

	s := boundSession()
	s.History = pair("old", "older")
	_, next, err := e.Ask(context.Background(), "What is X?", s)
	require.NoError(t, err)

	require.Len(t, next.History, 2)
	assert.Equal(t, "What is X?", next.History[0].Content)
	assert.Greater(t, EstimateTokens(wordCounter{}, next.History), 100)
}

func TestSession_Binding(t *testing.T) {
	s := boundSession()
	s.History = pair("q", "a")

	rebound := s.Bind("B")
	assert.Equal(t, "B", rebound.Collection)
	assert.Empty(t, rebound.History)
	assert.Len(t, s.History, 2, "Bind must not modify the receiver's history")

	unbound := rebound.Unbind()
	assert.False(t, unbound.Bound())
	assert.True(t, rebound.Bound())
}
