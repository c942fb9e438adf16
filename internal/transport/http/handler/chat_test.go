package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/cerajamme/myPUPQC-chatbot/internal/app"
	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
	"github.com/cerajamme/myPUPQC-chatbot/internal/transport/http/response"
)

type stubResponder struct {
	lastQuestion string
	lastSession  string
}

func (s *stubResponder) Answer(_ context.Context, question, sessionID string) (*app.AnswerResult, error) {
	s.lastQuestion = question
	s.lastSession = sessionID
	return &app.AnswerResult{
		Answer: "Enrollment opens March 1.",
		Sources: []app.Source{
			{Page: 2, Filename: "handbook.pdf", ChunkID: 9, Confidence: 2},
		},
		ResponseTimeMs: 120,
		SessionID:      sessionID,
	}, nil
}

func (s *stubResponder) Ingest(context.Context, app.IngestInput) *app.IngestResult {
	return &app.IngestResult{Status: "success"}
}

func (s *stubResponder) ListDocuments() ([]model.Document, error) { return nil, nil }

func (s *stubResponder) DeleteDocument(uint) error { return nil }

func (s *stubResponder) HealthCheck(context.Context) app.HealthStatus {
	return app.HealthStatus{Status: "healthy"}
}

func newChatTestRouter(stub *stubResponder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewChatHandler(stub)
	router.POST("/api/v1/chat/student", h.StudentChat)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStudentChatStripsSources(t *testing.T) {
	stub := &stubResponder{}
	router := newChatTestRouter(stub)

	rec := postJSON(t, router, "/api/v1/chat/student", gin.H{
		"message":    "when does enrollment open",
		"session_id": "sess-9",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, response.CodeOK, envelope.Code)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var result app.AnswerResult
	require.NoError(t, json.Unmarshal(data, &result))

	require.Equal(t, "Enrollment opens March 1.", result.Answer)
	require.Empty(t, result.Sources, "sources must not leak to the widget")
	require.Equal(t, 120, result.ResponseTimeMs)
	require.Equal(t, "sess-9", result.SessionID)
	require.Equal(t, "sess-9", stub.lastSession)
}

func TestStudentChatGeneratesSessionID(t *testing.T) {
	stub := &stubResponder{}
	router := newChatTestRouter(stub)

	rec := postJSON(t, router, "/api/v1/chat/student", gin.H{"message": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, stub.lastSession, "missing session id must be generated")
}

func TestStudentChatRejectsMissingMessage(t *testing.T) {
	stub := &stubResponder{}
	router := newChatTestRouter(stub)

	rec := postJSON(t, router, "/api/v1/chat/student", gin.H{"session_id": "sess-1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope response.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, response.CodeBadRequest, envelope.Code)
	require.Empty(t, stub.lastQuestion)
}
