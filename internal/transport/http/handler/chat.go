package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cerajamme/myPUPQC-chatbot/internal/app"
	"github.com/cerajamme/myPUPQC-chatbot/internal/transport/http/response"
)

// ChatHandler serves the public question endpoint and the admin test
// endpoint. Both strip sources before responding so the widget presents
// answers as natural conversation.
type ChatHandler struct {
	responder app.Responder
}

type StudentChatRequest struct {
	Message   string `json:"message" binding:"required,max=2000"`
	SessionID string `json:"session_id" binding:"max=64"`
}

func NewChatHandler(responder app.Responder) *ChatHandler {
	return &ChatHandler{responder: responder}
}

func (h *ChatHandler) StudentChat(c *gin.Context) {
	h.answer(c)
}

// TestChat is the authenticated dashboard variant of StudentChat; the
// behavior is identical so admins exercise the exact student path.
func (h *ChatHandler) TestChat(c *gin.Context) {
	h.answer(c)
}

func (h *ChatHandler) answer(c *gin.Context) {
	var req StudentChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := h.responder.Answer(c.Request.Context(), req.Message, sessionID)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer failed")
		return
	}

	// Sources stay in the audit log only.
	result.Sources = []app.Source{}
	response.OK(c, result)
}
