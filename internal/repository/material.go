package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
)

type MaterialRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Material, error)
	Create(ctx context.Context, m *entity.Material) (*entity.Material, error)
}

type materialRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewMaterialRepository(db *DB, logger *slog.Logger) MaterialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &materialRepository{
		db:     db,
		logger: logger,
	}
}

var materialColumns = []string{
	"id", "class_id", "file_name", "file_type", "file_url", "file_key",
	"file_size", "content_hash", "uploaded_at",
}

func scanMaterial(rows *entsql.Rows) (*entity.Material, error) {
	var (
		m        entity.Material
		fileType string
	)
	if err := rows.Scan(&m.ID, &m.ClassID, &m.FileName, &fileType, &m.FileURL, &m.FileKey,
		&m.FileSize, &m.ContentHash, &m.UploadedAt); err != nil {
		return nil, err
	}
	m.FileType = constants.FileFormat(fileType)
	return &m, nil
}

func (r *materialRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	q, args := r.db.builder().
		Select(materialColumns...).
		From(entsql.Table("materials")).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get material", "material_id", id, "error", err)
		return nil, err
	}
	return one(rows, scanMaterial, "material "+id.String())
}

func (r *materialRepository) Create(ctx context.Context, m *entity.Material) (*entity.Material, error) {
	out := *m
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.UploadedAt.IsZero() {
		out.UploadedAt = now()
	}

	q, args := r.db.builder().
		Insert("materials").
		Columns(materialColumns...).
		Values(out.ID, out.ClassID, out.FileName, string(out.FileType), out.FileURL, out.FileKey,
			out.FileSize, out.ContentHash, out.UploadedAt.UTC()).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to create material", "class_id", out.ClassID, "file_name", out.FileName, "error", err)
		return nil, err
	}
	return &out, nil
}
