package model

import "time"

// Conversation is the analytics audit record for one answered question.
// Write-only from the answer path; failures writing it never surface.
type Conversation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ChatbotID      uint      `gorm:"not null;index" json:"chatbot_id"`
	SessionID      string    `gorm:"size:64;not null;index" json:"session_id"`
	UserMessage    string    `gorm:"type:text;not null" json:"user_message"`
	BotResponse    string    `gorm:"type:text;not null" json:"bot_response"`
	ResponseTimeMs int       `json:"response_time_ms"`
	SourcesUsed    string    `gorm:"type:text" json:"sources_used,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
