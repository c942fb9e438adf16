package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) CreateBatch(chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.Create(&chunks).Error; err != nil {
		return fmt.Errorf("create chunks batch failed: %w", err)
	}
	return nil
}

// ListByDocumentIDs returns all chunks for the given documents in stable
// (document, ordinal) order. Tie-break order of retrieval scoring depends
// on this ordering staying stable.
func (r *ChunkRepository) ListByDocumentIDs(documentIDs []uint) ([]model.DocumentChunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	var chunks []model.DocumentChunk
	if err := r.db.Where("document_id IN ?", documentIDs).
		Order("document_id ASC, chunk_index ASC").
		Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks by document ids failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteByDocumentID(documentID uint) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.DocumentChunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}
