package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
)

type ClassRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Class, error)
	GetOrCreateByName(ctx context.Context, name string, description *string) (*entity.Class, error)
}

type classRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewClassRepository(db *DB, logger *slog.Logger) ClassRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &classRepository{
		db:     db,
		logger: logger,
	}
}

var classColumns = []string{"id", "name", "description", "created_at"}

func scanClass(rows *entsql.Rows) (*entity.Class, error) {
	var (
		c    entity.Class
		desc sql.NullString
	)
	if err := rows.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Description = stringPtr(desc)
	return &c, nil
}

func (r *classRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Class, error) {
	q, args := r.db.builder().
		Select(classColumns...).
		From(entsql.Table("classes")).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get class", "class_id", id, "error", err)
		return nil, err
	}
	return one(rows, scanClass, "class "+id.String())
}

func (r *classRepository) getByName(ctx context.Context, name string) (*entity.Class, error) {
	q, args := r.db.builder().
		Select(classColumns...).
		From(entsql.Table("classes")).
		Where(entsql.EQ("name", name)).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	return one(rows, scanClass, "class "+name)
}

// GetOrCreateByName is idempotent: concurrent callers converge on one row.
func (r *classRepository) GetOrCreateByName(ctx context.Context, name string, description *string) (*entity.Class, error) {
	name = strings.TrimSpace(name)
	if existing, err := r.getByName(ctx, name); err == nil {
		return existing, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to look up class", "name", name, "error", err)
		return nil, err
	}

	q, args := r.db.builder().
		Insert("classes").
		Columns(classColumns...).
		Values(uuid.New(), name, nullString(description), now()).
		OnConflict(entsql.ConflictColumns("name"), entsql.DoNothing()).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to create class", "name", name, "error", err)
		return nil, err
	}
	return r.getByName(ctx, name)
}
