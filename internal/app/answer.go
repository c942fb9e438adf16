package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cerajamme/myPUPQC-chatbot/internal/ai"
)

// Canned replies for the degraded paths. The public answer surface never
// returns an error; it always has something to say.
const (
	NoContextAnswer = "I'm still learning about that topic, so I don't have a good answer yet. Try asking me about enrollment, courses, policies, or other student services!"
	ErrorAnswer     = "I'm sorry, I'm having trouble processing your question right now. Please try again later."
)

const systemPrompt = `You are a friendly student support assistant. Use the provided context from official student documents to answer questions naturally and conversationally.

Guidelines:
- Answer based only on the provided context
- Write in a natural, conversational tone like a helpful student assistant
- Never mention page numbers, document names, or technical references
- Use the bullet character • when presenting multiple items, never raw asterisks
- Keep answers clear, friendly, and helpful for students`

// LLMClient is the single outbound call the generator makes.
type LLMClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// AnswerGenerator builds a grounded prompt from retrieved chunks, makes
// one model call, and cleans the output. Model failure degrades to the
// "still learning" reply; it is never surfaced as an error.
type AnswerGenerator struct {
	llm LLMClient
	cfg ai.ChatConfig
	log *logrus.Logger
}

func NewAnswerGenerator(llm LLMClient, cfg ai.ChatConfig, log *logrus.Logger) *AnswerGenerator {
	return &AnswerGenerator{llm: llm, cfg: cfg, log: log}
}

// Generate returns the cleaned answer text. Empty chunk lists and model
// failures both return the canned reply.
func (g *AnswerGenerator) Generate(ctx context.Context, question string, chunks []RetrievedChunk) string {
	if len(chunks) == 0 {
		return NoContextAnswer
	}

	messages := []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(question, chunks)},
	}

	raw, err := g.llm.Complete(ctx, g.cfg, messages)
	if err != nil {
		g.log.WithError(err).Warn("llm call failed, returning canned answer")
		return NoContextAnswer
	}

	cleaned := CleanAnswer(raw)
	if cleaned == "" {
		return NoContextAnswer
	}
	return cleaned
}

func buildUserPrompt(question string, chunks []RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for _, rc := range chunks {
		fmt.Fprintf(&b, "\n---\n[%s, page %d]\n%s\n", rc.Filename, rc.Chunk.PageNumber, rc.Chunk.TextContent)
	}
	b.WriteString("---\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a helpful, natural answer without technical references:")
	return b.String()
}
