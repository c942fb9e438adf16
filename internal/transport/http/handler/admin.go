package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cerajamme/myPUPQC-chatbot/internal/app"
	"github.com/cerajamme/myPUPQC-chatbot/internal/config"
	"github.com/cerajamme/myPUPQC-chatbot/internal/repository"
	"github.com/cerajamme/myPUPQC-chatbot/internal/transport/http/response"
)

// AdminHandler owns the dashboard surface: document lifecycle and
// conversation analytics for the student bot.
type AdminHandler struct {
	responder app.Responder
	convRepo  *repository.ConversationRepository
	cfg       *config.Config
	chatbotID uint
	log       *logrus.Logger
}

func NewAdminHandler(responder app.Responder, convRepo *repository.ConversationRepository, cfg *config.Config, chatbotID uint, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		responder: responder,
		convRepo:  convRepo,
		cfg:       cfg,
		chatbotID: chatbotID,
		log:       log,
	}
}

// UploadDocument validates and stores the PDF, then hands extraction and
// chunking to a background goroutine. The client learns the outcome by
// re-listing documents and reading their status.
func (h *AdminHandler) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if !h.cfg.IsFileAllowed(file.Filename) {
		response.Error(c, http.StatusBadRequest, response.CodeFileNotAllowed, "only PDF files are allowed")
		return
	}
	if !h.cfg.IsFileSizeValid(file.Size) {
		response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge,
			fmt.Sprintf("file exceeds the %dMB limit", h.cfg.Upload.MaxFileSizeMB))
		return
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	storedPath, err := h.cfg.UploadPath(storedName)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "prepare upload failed")
		return
	}
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save upload failed")
		return
	}

	input := app.IngestInput{
		FilePath:         storedPath,
		StoredFilename:   storedName,
		OriginalFilename: file.Filename,
		FileSize:         file.Size,
		ChatbotID:        h.chatbotID,
	}
	go func() {
		result := h.responder.Ingest(context.Background(), input)
		h.log.WithFields(logrus.Fields{
			"filename":    input.OriginalFilename,
			"status":      result.Status,
			"document_id": result.DocumentID,
		}).Info("document ingestion finished")
	}()

	response.OK(c, gin.H{
		"filename": file.Filename,
		"status":   "processing",
		"message":  "document uploaded, processing started",
	})
}

func (h *AdminHandler) ListDocuments(c *gin.Context) {
	docs, err := h.responder.ListDocuments()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *AdminHandler) DeleteDocument(c *gin.Context) {
	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.responder.DeleteDocument(docID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": docID})
}

func (h *AdminHandler) Analytics(c *gin.Context) {
	total, err := h.convRepo.CountByChatbotID(h.chatbotID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "analytics failed")
		return
	}

	recent, err := h.convRepo.ListRecent(h.chatbotID, 20)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "analytics failed")
		return
	}

	response.OK(c, gin.H{
		"total_conversations":  total,
		"recent_conversations": recent,
	})
}
