package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

type ChatbotRepository struct {
	db *gorm.DB
}

func NewChatbotRepository(db *gorm.DB) *ChatbotRepository {
	return &ChatbotRepository{db: db}
}

func (r *ChatbotRepository) Create(bot *model.Chatbot) error {
	if err := r.db.Create(bot).Error; err != nil {
		return fmt.Errorf("create chatbot failed: %w", err)
	}
	return nil
}

// GetByType returns the first chatbot of the given type, nil when none exists.
func (r *ChatbotRepository) GetByType(botType string) (*model.Chatbot, error) {
	var bot model.Chatbot
	if err := r.db.Where("type = ?", botType).First(&bot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chatbot by type failed: %w", err)
	}
	return &bot, nil
}
