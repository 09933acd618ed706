package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
)

type AdaptedMaterialRepository interface {
	// Create always inserts; there is no upsert path.
	Create(ctx context.Context, a *entity.AdaptedMaterial) (*entity.AdaptedMaterial, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AdaptedMaterial, error)
	ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]*entity.AdaptedMaterial, error)
}

type adaptedMaterialRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewAdaptedMaterialRepository(db *DB, logger *slog.Logger) AdaptedMaterialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &adaptedMaterialRepository{
		db:     db,
		logger: logger,
	}
}

var adaptedColumns = []string{
	"id", "material_id", "profile_id", "adapted_file_name", "adapted_file_url",
	"adapted_file_key", "adapted_file_size", "outcome", "adapted_at",
}

func scanAdapted(rows *entsql.Rows) (*entity.AdaptedMaterial, error) {
	var (
		a       entity.AdaptedMaterial
		outcome string
	)
	if err := rows.Scan(&a.ID, &a.MaterialID, &a.ProfileID, &a.AdaptedFileName, &a.AdaptedFileURL,
		&a.AdaptedFileKey, &a.AdaptedFileSize, &outcome, &a.AdaptedAt); err != nil {
		return nil, err
	}
	a.Outcome = constants.AdaptOutcome(outcome)
	return &a, nil
}

func (r *adaptedMaterialRepository) Create(ctx context.Context, a *entity.AdaptedMaterial) (*entity.AdaptedMaterial, error) {
	out := *a
	out.ID = uuid.New()
	if out.AdaptedAt.IsZero() {
		out.AdaptedAt = now()
	}
	if out.Outcome == "" {
		out.Outcome = constants.OutcomeAdapted
	}

	q, args := r.db.builder().
		Insert("adapted_materials").
		Columns(adaptedColumns...).
		Values(out.ID, out.MaterialID, out.ProfileID, out.AdaptedFileName, out.AdaptedFileURL,
			out.AdaptedFileKey, out.AdaptedFileSize, string(out.Outcome), out.AdaptedAt.UTC()).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to create adapted material",
			"material_id", out.MaterialID, "profile_id", out.ProfileID, "error", err)
		return nil, err
	}
	return &out, nil
}

func (r *adaptedMaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AdaptedMaterial, error) {
	q, args := r.db.builder().
		Select(adaptedColumns...).
		From(entsql.Table("adapted_materials")).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get adapted material", "adapted_material_id", id, "error", err)
		return nil, err
	}
	return one(rows, scanAdapted, "adapted material "+id.String())
}

// ListByMaterial returns the adaptation history, oldest first.
func (r *adaptedMaterialRepository) ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]*entity.AdaptedMaterial, error) {
	q, args := r.db.builder().
		Select(adaptedColumns...).
		From(entsql.Table("adapted_materials")).
		Where(entsql.EQ("material_id", materialID)).
		OrderBy("adapted_at", "id").
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list adapted materials", "material_id", materialID, "error", err)
		return nil, err
	}
	return collect(rows, scanAdapted)
}
