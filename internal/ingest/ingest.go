package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
)

// RegistrationResult describes one registered material.
type RegistrationResult struct {
	SourcePath string
	MaterialID uuid.UUID
	FileName   string
	Format     constants.FileFormat
	FileKey    string
	FileURL    string
	Size       int64
	HashHex    string
	UploadedAt time.Time
	Err        string
}

// DirStats summarizes a directory registration.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Registrar is the behavior the server and the batch CLI depend on.
type Registrar interface {
	// Register stores data as a new material of classID.
	Register(ctx context.Context, classID uuid.UUID, fileName string, data []byte) (RegistrationResult, error)
	// RegisterPath reads a local file and registers it.
	RegisterPath(ctx context.Context, classID uuid.UUID, path string) (RegistrationResult, error)
	// RegisterDirectory registers every pdf/docx under root.
	RegisterDirectory(ctx context.Context, classID uuid.UUID, root string, skipHidden bool) ([]RegistrationResult, DirStats, error)
}
