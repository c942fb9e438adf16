package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

// Source identifies which chunk an answer drew from. Computed for the
// audit log; the HTTP layer strips sources before responding, per the
// natural-conversation policy.
type Source struct {
	Page       int     `json:"page"`
	Filename   string  `json:"filename"`
	ChunkID    uint    `json:"chunk_id"`
	Confidence float64 `json:"confidence,omitempty"`
}

// AnswerResult is the orchestrator's structured answer.
type AnswerResult struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	ResponseTimeMs int      `json:"response_time_ms"`
	SessionID      string   `json:"session_id,omitempty"`
}

// IngestInput describes one saved upload awaiting processing.
type IngestInput struct {
	FilePath         string
	StoredFilename   string
	OriginalFilename string
	FileSize         int64
	ChatbotID        uint
}

// IngestResult reports how ingestion ended. Status is "success" or
// "error"; Error carries the stored failure text.
type IngestResult struct {
	Status     string `json:"status"`
	DocumentID uint   `json:"document_id,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HealthStatus is the responder's self-report for the health endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	LLM       string `json:"llm"`
	Documents int    `json:"documents"`
}

// Responder is the chatbot capability surface. Two variants exist: the
// real StudentService and a degraded no-op used when the service cannot
// be fully constructed. The variant is chosen once at startup, never by
// runtime substitution.
type Responder interface {
	Answer(ctx context.Context, question, sessionID string) (*AnswerResult, error)
	Ingest(ctx context.Context, input IngestInput) *IngestResult
	ListDocuments() ([]model.Document, error)
	DeleteDocument(id uint) error
	HealthCheck(ctx context.Context) HealthStatus
}

// DegradedResponder keeps the public surface alive with canned replies
// when the LLM configuration is incomplete.
type DegradedResponder struct {
	log *logrus.Logger
}

func NewDegradedResponder(log *logrus.Logger) *DegradedResponder {
	return &DegradedResponder{log: log}
}

func (d *DegradedResponder) Answer(_ context.Context, _, sessionID string) (*AnswerResult, error) {
	return &AnswerResult{
		Answer:         ErrorAnswer,
		Sources:        []Source{},
		ResponseTimeMs: 0,
		SessionID:      sessionID,
	}, nil
}

func (d *DegradedResponder) Ingest(_ context.Context, input IngestInput) *IngestResult {
	d.log.WithField("filename", input.OriginalFilename).Warn("ingest rejected: responder degraded")
	return &IngestResult{Status: "error", Error: "document processing is unavailable"}
}

func (d *DegradedResponder) ListDocuments() ([]model.Document, error) {
	return nil, nil
}

func (d *DegradedResponder) DeleteDocument(uint) error {
	return ErrDocumentNotFound
}

func (d *DegradedResponder) HealthCheck(context.Context) HealthStatus {
	return HealthStatus{Status: "degraded", LLM: "unconfigured"}
}
