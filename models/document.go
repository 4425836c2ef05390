package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded image or PDF kept for analysis
type Document struct {
	ID          uuid.UUID `json:"id"`
	SessionID   *string   `json:"session_id,omitempty"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
