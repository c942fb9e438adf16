package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conv *model.Conversation) error {
	if err := r.db.Create(conv).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) CountByChatbotID(chatbotID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Conversation{}).Where("chatbot_id = ?", chatbotID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count conversations failed: %w", err)
	}
	return count, nil
}

func (r *ConversationRepository) ListRecent(chatbotID uint, limit int) ([]model.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var convs []model.Conversation
	if err := r.db.Where("chatbot_id = ?", chatbotID).
		Order("created_at DESC").
		Limit(limit).
		Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("list recent conversations failed: %w", err)
	}
	return convs, nil
}
