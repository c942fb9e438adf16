package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cerajamme/myPUPQC-chatbot/internal/app"
	"github.com/cerajamme/myPUPQC-chatbot/internal/transport/http/response"
)

// DirectHandler exposes the human-handoff relay: the widget side keyed by
// session token, the dashboard side keyed by chat id.
type DirectHandler struct {
	relay *app.RelayService
}

type DirectMessageRequest struct {
	SessionID string `json:"session_id" binding:"required,max=64"`
	Message   string `json:"message" binding:"required,max=2000"`
}

type DirectCloseRequest struct {
	SessionID string `json:"session_id" binding:"required,max=64"`
	Reason    string `json:"reason" binding:"max=500"`
}

type AdminDirectMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

type AdminDirectCloseRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

func NewDirectHandler(relay *app.RelayService) *DirectHandler {
	return &DirectHandler{relay: relay}
}

func (h *DirectHandler) PostMessage(c *gin.Context) {
	var req DirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	chat, msg, err := h.relay.PostUserMessage(c.Request.Context(), req.SessionID, req.Message, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrEmptyMessage):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "post message failed")
		}
		return
	}

	response.OK(c, gin.H{
		"chat_status": chat.Status,
		"message":     msg,
	})
}

func (h *DirectHandler) Poll(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing session_id")
		return
	}
	lastSeenID := parseUintQuery(c, "last_seen_id")

	messages, err := h.relay.PollNewMessages(c.Request.Context(), sessionID, lastSeenID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "poll failed")
		return
	}

	response.OK(c, gin.H{"messages": messages})
}

func (h *DirectHandler) Close(c *gin.Context) {
	var req DirectCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.relay.CloseSession(c.Request.Context(), req.SessionID, req.Reason); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "close failed")
		return
	}
	response.OK(c, gin.H{"closed": true})
}

func (h *DirectHandler) ListChats(c *gin.Context) {
	chats, err := h.relay.ListChats(c.Query("status"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list chats failed")
		return
	}
	response.OK(c, chats)
}

func (h *DirectHandler) ListChatMessages(c *gin.Context) {
	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}
	afterID := parseUintQuery(c, "after_id")

	messages, err := h.relay.ListMessages(c.Request.Context(), chatID, afterID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list messages failed")
		}
		return
	}
	response.OK(c, gin.H{"messages": messages})
}

func (h *DirectHandler) PostAdminMessage(c *gin.Context) {
	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}

	var req AdminDirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	msg, err := h.relay.PostAdminMessage(c.Request.Context(), chatID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyMessage):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		case errors.Is(err, app.ErrChatClosed):
			response.Error(c, http.StatusConflict, response.CodeChatClosed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "post message failed")
		}
		return
	}
	response.OK(c, msg)
}

func (h *DirectHandler) CloseChat(c *gin.Context) {
	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}

	var req AdminDirectCloseRequest
	// Body is optional on close.
	_ = c.ShouldBindJSON(&req)

	if err := h.relay.CloseChat(c.Request.Context(), chatID, req.Reason); err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "close chat failed")
		}
		return
	}
	response.OK(c, gin.H{"closed_chat_id": chatID})
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}

func parseUintQuery(c *gin.Context, key string) uint {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	u, _ := strconv.ParseUint(raw, 10, 64)
	return uint(u)
}
