package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByChatbotID(chatbotID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("chatbot_id = ?", chatbotID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// ListReadyByChatbotID returns documents whose chunks are searchable.
func (r *DocumentRepository) ListReadyByChatbotID(chatbotID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("chatbot_id = ? AND status = ?", chatbotID, model.DocumentStatusReady).
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list ready documents failed: %w", err)
	}
	return docs, nil
}

// MarkReady finalizes a successfully ingested document.
func (r *DocumentRepository) MarkReady(id uint, pageCount, chunkCount int, processedAt time.Time) error {
	updates := map[string]interface{}{
		"status":           model.DocumentStatusReady,
		"page_count":       pageCount,
		"chunk_count":      chunkCount,
		"processed_at":     processedAt,
		"processing_error": "",
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("mark document ready failed: %w", err)
	}
	return nil
}

// MarkFailed records a terminal ingestion failure with the stored error text.
func (r *DocumentRepository) MarkFailed(id uint, processingError string) error {
	updates := map[string]interface{}{
		"status":           model.DocumentStatusFailed,
		"processing_error": processingError,
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("mark document failed failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Document{}, id).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
