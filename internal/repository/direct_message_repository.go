package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

type DirectMessageRepository struct {
	db *gorm.DB
}

func NewDirectMessageRepository(db *gorm.DB) *DirectMessageRepository {
	return &DirectMessageRepository{db: db}
}

func (r *DirectMessageRepository) Create(msg *model.DirectMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("create direct message failed: %w", err)
	}
	return nil
}

// ListAfter returns messages with id strictly greater than afterID,
// oldest first. The id is the polling watermark: strict greater-than means
// a client that never decreases its watermark can miss nothing.
func (r *DirectMessageRepository) ListAfter(chatID uint, afterID uint) ([]model.DirectMessage, error) {
	var messages []model.DirectMessage
	if err := r.db.Where("chat_id = ? AND id > ?", chatID, afterID).
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list direct messages failed: %w", err)
	}
	return messages, nil
}
