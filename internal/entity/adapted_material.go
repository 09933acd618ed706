package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
)

// AdaptedMaterial is the output of one (material, profile) adaptation.
// Rows are append-only: re-running a batch inserts new rows.
type AdaptedMaterial struct {
	ID              uuid.UUID              `json:"id"`
	MaterialID      uuid.UUID              `json:"material_id"`
	ProfileID       uuid.UUID              `json:"profile_id"`
	AdaptedFileName string                 `json:"adapted_file_name"`
	AdaptedFileURL  string                 `json:"adapted_file_url"`
	AdaptedFileKey  string                 `json:"adapted_file_key"`
	AdaptedFileSize int64                  `json:"adapted_file_size"`
	Outcome         constants.AdaptOutcome `json:"outcome"`
	AdaptedAt       time.Time              `json:"adapted_at"`
}
