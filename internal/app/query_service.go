package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
)

// smallTalkLatencyMs is the fixed placeholder reported for small-talk
// replies; it is not a real measurement.
const smallTalkLatencyMs = 50

// ConversationPublisher delivers audit records to the analytics sink.
// Publishing is best-effort; failures never affect the answer.
type ConversationPublisher interface {
	Publish(ctx context.Context, conv model.Conversation) error
}

// PageExtractor turns an uploaded file into per-page plain text.
type PageExtractor func(r io.Reader) ([]string, error)

// StudentService is the real Responder: it sequences intent
// classification, lexical retrieval, grounded generation, and
// best-effort conversation logging, and owns the ingestion pipeline.
// Constructed once at startup and injected into handlers.
type StudentService struct {
	chatbotID uint
	intents   *IntentClassifier
	retriever *LexicalRetriever
	generator *AnswerGenerator
	chunker   *Chunker
	docs      DocumentStore
	chunks    ChunkStore
	publisher ConversationPublisher
	extract   PageExtractor
	analytics bool
	llmReady  bool
	log       *logrus.Logger
}

type StudentServiceParams struct {
	ChatbotID uint
	Intents   *IntentClassifier
	Retriever *LexicalRetriever
	Generator *AnswerGenerator
	Chunker   *Chunker
	Docs      DocumentStore
	Chunks    ChunkStore
	Publisher ConversationPublisher
	Extract   PageExtractor
	Analytics bool
	LLMReady  bool
	Log       *logrus.Logger
}

func NewStudentService(p StudentServiceParams) *StudentService {
	return &StudentService{
		chatbotID: p.ChatbotID,
		intents:   p.Intents,
		retriever: p.Retriever,
		generator: p.Generator,
		chunker:   p.Chunker,
		docs:      p.Docs,
		chunks:    p.Chunks,
		publisher: p.Publisher,
		extract:   p.Extract,
		analytics: p.Analytics,
		llmReady:  p.LLMReady,
		log:       p.Log,
	}
}

// Answer handles one question end to end. Small talk returns a canned
// reply without touching storage or the model. Zero retrieval hits return
// the "still learning" reply with zero latency. Storage and model
// failures degrade to canned replies; the method never fails the caller
// for those.
func (s *StudentService) Answer(ctx context.Context, question, sessionID string) (*AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	if cls := s.intents.Classify(question); cls.SmallTalk() {
		return &AnswerResult{
			Answer:         cls.Reply,
			Sources:        []Source{},
			ResponseTimeMs: smallTalkLatencyMs,
			SessionID:      sessionID,
		}, nil
	}

	start := time.Now()
	retrieved, err := s.retriever.Search(question, s.chatbotID, 0)
	if err != nil {
		s.log.WithError(err).Error("retrieval failed, returning canned answer")
		result := &AnswerResult{
			Answer:         ErrorAnswer,
			Sources:        []Source{},
			ResponseTimeMs: 0,
			SessionID:      sessionID,
		}
		s.logConversation(ctx, question, result)
		return result, nil
	}

	if len(retrieved) == 0 {
		result := &AnswerResult{
			Answer:         NoContextAnswer,
			Sources:        []Source{},
			ResponseTimeMs: 0,
			SessionID:      sessionID,
		}
		s.logConversation(ctx, question, result)
		return result, nil
	}

	answer := s.generator.Generate(ctx, question, retrieved)
	elapsed := int(time.Since(start).Milliseconds())

	sources := make([]Source, 0, len(retrieved))
	for _, rc := range retrieved {
		sources = append(sources, Source{
			Page:       rc.Chunk.PageNumber,
			Filename:   rc.Filename,
			ChunkID:    rc.Chunk.ID,
			Confidence: float64(rc.Score),
		})
	}

	result := &AnswerResult{
		Answer:         answer,
		Sources:        sources,
		ResponseTimeMs: elapsed,
		SessionID:      sessionID,
	}
	s.logConversation(ctx, question, result)
	return result, nil
}

// logConversation publishes the audit record. Best-effort: any failure is
// logged and swallowed.
func (s *StudentService) logConversation(ctx context.Context, question string, result *AnswerResult) {
	if !s.analytics || s.publisher == nil {
		return
	}

	sourcesJSON, err := json.Marshal(result.Sources)
	if err != nil {
		sourcesJSON = []byte("[]")
	}

	conv := model.Conversation{
		ChatbotID:      s.chatbotID,
		SessionID:      orAnonymous(result.SessionID),
		UserMessage:    question,
		BotResponse:    result.Answer,
		ResponseTimeMs: result.ResponseTimeMs,
		SourcesUsed:    string(sourcesJSON),
		CreatedAt:      time.Now(),
	}
	if err := s.publisher.Publish(ctx, conv); err != nil {
		s.log.WithError(err).Warn("conversation publish failed")
	}
}

// HealthCheck reports storage reachability and LLM configuration state.
func (s *StudentService) HealthCheck(context.Context) HealthStatus {
	status := HealthStatus{Status: "healthy", LLM: "ready"}
	if !s.llmReady {
		status.Status = "degraded"
		status.LLM = "unconfigured"
	}

	docs, err := s.docs.ListByChatbotID(s.chatbotID)
	if err != nil {
		status.Status = "error"
		return status
	}
	status.Documents = len(docs)
	return status
}

func orAnonymous(sessionID string) string {
	if sessionID == "" {
		return "anonymous"
	}
	return sessionID
}
