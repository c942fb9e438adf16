package model

import "time"

// Document status values. Transitions are monotonic forward:
// uploading -> processing -> ready|failed.
const (
	DocumentStatusUploading  = "uploading"
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)

// Document is one uploaded PDF. Only the ingestion pipeline mutates it
// after creation; ready requires ChunkCount > 0.
type Document struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ChatbotID        uint       `gorm:"not null;index" json:"chatbot_id"`
	Filename         string     `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string     `gorm:"size:255;not null" json:"original_filename"`
	FilePath         string     `gorm:"size:500;not null" json:"-"`
	FileSize         int64      `gorm:"not null" json:"file_size"`
	Status           string     `gorm:"size:20;not null;index;default:'uploading'" json:"status"`
	PageCount        int        `json:"pages"`
	ChunkCount       int        `json:"chunks"`
	ProcessingError  string     `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt        time.Time  `json:"uploaded_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
}
