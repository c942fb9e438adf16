package model

import "time"

// DirectChat status values. waiting -> active on first admin reply;
// waiting|active -> closed is terminal.
const (
	DirectChatStatusWaiting = "waiting"
	DirectChatStatusActive  = "active"
	DirectChatStatusClosed  = "closed"
)

// DirectChat is one human-handoff conversation between an anonymous
// visitor and an admin, keyed by an opaque session token.
type DirectChat struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    string    `gorm:"size:255;not null;uniqueIndex" json:"session_id"`
	UserIP       string    `gorm:"size:45" json:"user_ip,omitempty"`
	Status       string    `gorm:"size:20;not null;index;default:'waiting'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}
