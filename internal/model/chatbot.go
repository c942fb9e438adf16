package model

import "time"

const ChatbotTypeStudent = "student"

// Chatbot is one embeddable bot. The platform currently seeds a single
// "student" bot; documents and conversations hang off it.
type Chatbot struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Type           string    `gorm:"size:32;not null;index" json:"type"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	EmbedCode      string    `gorm:"size:36;not null;uniqueIndex" json:"embed_code"`
	WelcomeMessage string    `gorm:"type:text" json:"welcome_message"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
