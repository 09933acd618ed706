package entity

import (
	"time"

	"github.com/google/uuid"
)

// Class (turma) owns student profiles and materials.
type Class struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
