package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/material-adapter/internal/common"
)

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func now() time.Time {
	return time.Now().UTC()
}

// collect scans every row with fn and closes rows.
func collect[T any](rows *entsql.Rows, fn func(*entsql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := fn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// one returns the single row or an error wrapping common.ErrNotFound.
func one[T any](rows *entsql.Rows, fn func(*entsql.Rows) (T, error), what string) (T, error) {
	var zero T
	all, err := collect(rows, fn)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, fmt.Errorf("%s: %w", what, errors.Join(common.ErrNotFound, sql.ErrNoRows))
	}
	return all[0], nil
}
