package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cerajamme/myPUPQC-chatbot/internal/ai"
)

func newTestStudentService(t *testing.T, docs *fakeDocumentStore, chunks *fakeChunkStore, llm *fakeLLM, pub *fakePublisher) *StudentService {
	t.Helper()
	return NewStudentService(StudentServiceParams{
		ChatbotID: 1,
		Intents:   NewIntentClassifier(),
		Retriever: NewLexicalRetriever(docs, chunks, 5),
		Generator: NewAnswerGenerator(llm, ai.ChatConfig{BaseURL: "http://llm", APIKey: "k", Model: "m"}, testLogger()),
		Chunker:   NewChunker(500),
		Docs:      docs,
		Chunks:    chunks,
		Publisher: pub,
		Extract:   nil,
		Analytics: true,
		LLMReady:  true,
		Log:       testLogger(),
	})
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	svc := newTestStudentService(t, newFakeDocumentStore(), &fakeChunkStore{}, &fakeLLM{}, &fakePublisher{})

	_, err := svc.Answer(context.Background(), "   ", "s-1")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnswerSmallTalkSkipsRetrievalAndModel(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.err = errors.New("storage must not be touched")
	llm := &fakeLLM{reply: "must not be called"}
	pub := &fakePublisher{}
	svc := newTestStudentService(t, docs, &fakeChunkStore{}, llm, pub)

	result, err := svc.Answer(context.Background(), "good morning!", "s-1")
	require.NoError(t, err)
	require.Zero(t, llm.calls)
	require.Empty(t, pub.published)
	require.Equal(t, smallTalkLatencyMs, result.ResponseTimeMs)
	require.Empty(t, result.Sources)
	require.NotEmpty(t, result.Answer)
}

func TestAnswerZeroHitsReturnsNoContextReply(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf", "cafeteria hours are 7am to 8pm")
	llm := &fakeLLM{reply: "must not be called"}
	pub := &fakePublisher{}
	svc := newTestStudentService(t, docs, chunks, llm, pub)

	result, err := svc.Answer(context.Background(), "quantum chromodynamics tuition", "s-2")
	require.NoError(t, err)
	require.Equal(t, NoContextAnswer, result.Answer)
	require.Zero(t, result.ResponseTimeMs)
	require.Empty(t, result.Sources)
	require.Zero(t, llm.calls)

	// The miss is still logged for analytics.
	require.Len(t, pub.published, 1)
	require.Equal(t, NoContextAnswer, pub.published[0].BotResponse)
}

func TestAnswerGroundedPathReturnsSourcesAndLogs(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf",
		"The final exam schedule is posted two weeks before finals.")
	llm := &fakeLLM{reply: "The exam schedule is posted two weeks before finals."}
	pub := &fakePublisher{}
	svc := newTestStudentService(t, docs, chunks, llm, pub)

	result, err := svc.Answer(context.Background(), "exam schedule", "s-3")
	require.NoError(t, err)
	require.Equal(t, 1, llm.calls)
	require.Len(t, result.Sources, 1)
	require.Equal(t, "handbook.pdf", result.Sources[0].Filename)
	require.Equal(t, 1, result.Sources[0].Page)
	require.Equal(t, "s-3", result.SessionID)

	require.Len(t, pub.published, 1)
	require.Equal(t, "exam schedule", pub.published[0].UserMessage)
	require.Equal(t, "s-3", pub.published[0].SessionID)
	require.Contains(t, pub.published[0].SourcesUsed, "handbook.pdf")
}

func TestAnswerRetrievalFailureDegradesToCannedReply(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.err = errors.New("mysql down")
	pub := &fakePublisher{}
	svc := newTestStudentService(t, docs, &fakeChunkStore{}, &fakeLLM{}, pub)

	result, err := svc.Answer(context.Background(), "enrollment schedule", "s-4")
	require.NoError(t, err)
	require.Equal(t, ErrorAnswer, result.Answer)
	require.Empty(t, result.Sources)
}

func TestAnswerPublishFailureDoesNotFailAnswer(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf", "enrollment opens in march")
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	svc := newTestStudentService(t, docs, chunks, &fakeLLM{reply: "Enrollment opens in March."}, pub)

	result, err := svc.Answer(context.Background(), "enrollment", "s-5")
	require.NoError(t, err)
	require.Equal(t, "Enrollment opens in March.", result.Answer)
}

func TestAnswerAnonymousSessionFallsBackInAuditLog(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf", "enrollment opens in march")
	pub := &fakePublisher{}
	svc := newTestStudentService(t, docs, chunks, &fakeLLM{reply: "Enrollment opens in March."}, pub)

	_, err := svc.Answer(context.Background(), "enrollment", "")
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	require.Equal(t, "anonymous", pub.published[0].SessionID)
}

func TestHealthCheckReportsDocumentCount(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "a.pdf", "text")
	seedReadyDocument(t, docs, chunks, 1, "b.pdf", "text")
	svc := newTestStudentService(t, docs, chunks, &fakeLLM{}, &fakePublisher{})

	status := svc.HealthCheck(context.Background())
	require.Equal(t, "healthy", status.Status)
	require.Equal(t, "ready", status.LLM)
	require.Equal(t, 2, status.Documents)
}
