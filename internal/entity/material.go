package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
)

// Material is an uploaded source document. Immutable once created.
type Material struct {
	ID          uuid.UUID            `json:"id"`
	ClassID     uuid.UUID            `json:"class_id"`
	FileName    string               `json:"file_name"`
	FileType    constants.FileFormat `json:"file_type"`
	FileURL     string               `json:"file_url"`
	FileKey     string               `json:"file_key"`
	FileSize    int64                `json:"file_size"`
	ContentHash []byte               `json:"content_hash,omitempty"`
	UploadedAt  time.Time            `json:"uploaded_at"`
}
