package model

import "time"

// Direct message sender kinds.
const (
	SenderUser   = "user"
	SenderAdmin  = "admin"
	SenderSystem = "system"
)

// DirectMessage is one relay message. Append-only; the auto-increment ID
// is the polling watermark, so polling filters on id strictly greater
// than the client's last seen id.
type DirectMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatID     uint      `gorm:"not null;index" json:"chat_id"`
	SenderType string    `gorm:"size:10;not null;index" json:"sender_type"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	SentAt     time.Time `json:"sent_at"`
}
