package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
)

// RegisterDirectory walks root and calls RegisterPath for each pdf/docx file.
// A failing file is recorded and the walk continues.
func (u *Usecase) RegisterDirectory(ctx context.Context, classID uuid.UUID, root string, skipHidden bool) ([]RegistrationResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []RegistrationResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, RegistrationResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.MapExtToFormat(filepath.Ext(path)).Valid() {
			return nil
		}
		stats.Matched++

		res, err := u.RegisterPath(ctx, classID, path)
		if err != nil {
			results = append(results, RegistrationResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, res)
		stats.Succeeded++
		return nil
	})

	u.Logger.Info("ingest.directory.done",
		"class_id", classID,
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
