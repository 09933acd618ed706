package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/material-adapter/internal/common"
)

// Stores bundles the typed repositories over one database.
type Stores struct {
	DB        *DB
	Classes   ClassRepository
	Profiles  StudentProfileRepository
	Materials MaterialRepository
	Adapted   AdaptedMaterialRepository
}

// NewStores wires every repository onto db.
func NewStores(db *DB, logger *slog.Logger) *Stores {
	return &Stores{
		DB:        db,
		Classes:   NewClassRepository(db, logger),
		Profiles:  NewStudentProfileRepository(db, logger),
		Materials: NewMaterialRepository(db, logger),
		Adapted:   NewAdaptedMaterialRepository(db, logger),
	}
}

// InitStores picks the persistent or in-memory database once, at process
// start. Postgres tables are created when migrate is set.
func InitStores(ctx context.Context, cfg common.DatabaseConfig, migrate bool, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.InMemory {
		db, err := OpenInMemory(ctx, logger)
		if err != nil {
			return nil, err
		}
		return NewStores(db, logger), nil
	}

	db, err := Open(ctx, ConfigFromCommon(cfg), logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := Migrate(ctx, db, logger); err != nil {
			Close(db, logger)
			return nil, err
		}
	}
	return NewStores(db, logger), nil
}

func (s *Stores) Close(logger *slog.Logger) {
	Close(s.DB, logger)
}
