package repository

import (
	"context"
	"database/sql"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
)

type StudentProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StudentProfile, error)
	Create(ctx context.Context, p *entity.StudentProfile) (*entity.StudentProfile, error)
	ListByClass(ctx context.Context, classID uuid.UUID) ([]*entity.StudentProfile, error)
}

type studentProfileRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewStudentProfileRepository(db *DB, logger *slog.Logger) StudentProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &studentProfileRepository{
		db:     db,
		logger: logger,
	}
}

var profileColumns = []string{
	"id", "class_id", "profile_name",
	"fragmentacao", "abstracao", "mediacao", "dislexia", "tipo_letra",
	"observacoes", "created_at", "updated_at",
}

func scanProfile(rows *entsql.Rows) (*entity.StudentProfile, error) {
	var (
		p                    entity.StudentProfile
		frag, abst, med, dys string
		letra                string
		notes                sql.NullString
	)
	if err := rows.Scan(&p.ID, &p.ClassID, &p.ProfileName,
		&frag, &abst, &med, &dys, &letra,
		&notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Fragmentacao = constants.Fragmentation(frag)
	p.Abstracao = constants.Abstraction(abst)
	p.Mediacao = constants.Mediation(med)
	p.Dislexia = constants.Dyslexia(dys)
	p.TipoLetra = constants.LetterStyle(letra)
	p.Observacoes = stringPtr(notes)
	return &p, nil
}

func (r *studentProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StudentProfile, error) {
	q, args := r.db.builder().
		Select(profileColumns...).
		From(entsql.Table("student_profiles")).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get student profile", "profile_id", id, "error", err)
		return nil, err
	}
	return one(rows, scanProfile, "student profile "+id.String())
}

// Create stores the profile as given; validity is checked at adaptation time.
func (r *studentProfileRepository) Create(ctx context.Context, p *entity.StudentProfile) (*entity.StudentProfile, error) {
	out := *p
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	ts := now()
	out.CreatedAt, out.UpdatedAt = ts, ts

	q, args := r.db.builder().
		Insert("student_profiles").
		Columns(profileColumns...).
		Values(out.ID, out.ClassID, out.ProfileName,
			string(out.Fragmentacao), string(out.Abstracao), string(out.Mediacao),
			string(out.Dislexia), string(out.TipoLetra),
			nullString(out.Observacoes), out.CreatedAt, out.UpdatedAt).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to create student profile", "class_id", out.ClassID, "name", out.ProfileName, "error", err)
		return nil, err
	}
	return &out, nil
}

func (r *studentProfileRepository) ListByClass(ctx context.Context, classID uuid.UUID) ([]*entity.StudentProfile, error) {
	q, args := r.db.builder().
		Select(profileColumns...).
		From(entsql.Table("student_profiles")).
		Where(entsql.EQ("class_id", classID)).
		OrderBy("created_at", "profile_name").
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list student profiles", "class_id", classID, "error", err)
		return nil, err
	}
	return collect(rows, scanProfile)
}
