package entity

import (
	"time"

	"github.com/google/uuid"
)

// Contract represents an uploaded contract file for data transfer between layers.
type Contract struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	SourcePath  string    `json:"source_path"`
	ContentHash []byte    `json:"content_hash"`
	FileExt     string    `json:"file_ext"`
	FileSize    int64     `json:"file_size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
