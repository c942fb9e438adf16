package model

import "time"

// DocumentChunk is a bounded span of extracted text, immutable once
// written. ChunkIndex is unique within a document; PageNumber >= 1.
type DocumentChunk struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocumentID  uint      `gorm:"not null;index;uniqueIndex:idx_doc_chunk,priority:1" json:"document_id"`
	ChunkIndex  int       `gorm:"not null;uniqueIndex:idx_doc_chunk,priority:2" json:"chunk_index"`
	TextContent string    `gorm:"type:text;not null" json:"text_content"`
	PageNumber  int       `gorm:"not null" json:"page_number"`
	StartChar   int       `json:"start_char,omitempty"`
	EndChar     int       `json:"end_char,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
