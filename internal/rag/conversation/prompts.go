package conversation

import (
	"fmt"
	"strings"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// FallbackAnswer is returned verbatim whenever the context cannot answer the question.
const FallbackAnswer = "I'm sorry, I don't know the answer to your question."

const rewritePrompt = `Considering the provided chat history and a subsequent question,
rewrite the follow-up question to be an independent query.
Chat History:"""
%s
"""
Follow Up Input: """
%s
"""
Standalone question:`

var answerInstruction = `You're an helpful AI assistant who provides answers to questions using the provided context.
When asked about your capabilities, provide a general overview of your ability to assist with questions based on the stored documents.
Answer only from the provided context. Provide a detailed answer to the question along with sources.
If you don't know the answer, simply state, "` + FallbackAnswer + `". Do not make up an answer.
Provide the answers in markdown format.`

const answerPrompt = "Question: ```%s```\n%s\n\nAnswer:\n\nSources:\n"

func formatHistory(history []commonModels.ChatMessage) string {
	var b strings.Builder
	for i, m := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch m.Role {
		case commonModels.RoleUser:
			b.WriteString("Human: ")
		case commonModels.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("System: ")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

func buildRewritePrompt(history []commonModels.ChatMessage, question string) string {
	return fmt.Sprintf(rewritePrompt, formatHistory(history), question)
}

func formatContext(chunks []commonModels.ScoredChunk) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Source: %s (page %d)\n%s", c.Source, c.Page, c.Content)
	}
	return b.String()
}

func buildAnswerPrompt(question string, chunks []commonModels.ScoredChunk) string {
	return fmt.Sprintf(answerPrompt, question, formatContext(chunks))
}
