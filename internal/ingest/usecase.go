package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

type Usecase struct {
	Classes   repository.ClassRepository
	Materials repository.MaterialRepository
	Store     storage.ObjectStore
	MaxSize   int64
	Logger    *slog.Logger
	Now       func() time.Time
}

func NewUsecase(classes repository.ClassRepository, materials repository.MaterialRepository, store storage.ObjectStore, logger *slog.Logger) *Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		Classes:   classes,
		Materials: materials,
		Store:     store,
		MaxSize:   constants.MaxMaterialSize,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Register validates format and size, stores the binary, then inserts the
// Material row. Nothing is written when validation fails.
func (u *Usecase) Register(ctx context.Context, classID uuid.UUID, fileName string, data []byte) (RegistrationResult, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	format := constants.MapExtToFormat(filepath.Ext(fileName))
	if !format.Valid() {
		return RegistrationResult{}, common.NewDomainError(common.ErrUnsupportedFormat,
			fmt.Sprintf("file %q: only pdf and docx are accepted", fileName), nil)
	}
	if len(data) == 0 {
		return RegistrationResult{}, common.NewDomainError(common.ErrInvalidInput, "file "+fileName+" is empty", nil)
	}
	if int64(len(data)) > u.MaxSize {
		return RegistrationResult{}, common.NewDomainError(common.ErrInvalidInput,
			fmt.Sprintf("file %q is %d bytes, limit is %d", fileName, len(data), u.MaxSize), nil)
	}
	if _, err := u.Classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return RegistrationResult{}, common.NewDomainError(common.ErrNotFound, "class "+classID.String(), err)
		}
		return RegistrationResult{}, common.NewDomainError(common.ErrDatabase, "load class", err)
	}

	sum := sha256.Sum256(data)
	at := u.Now().UTC()
	key := fmt.Sprintf("materials/%s/%d-%s", classID, at.UnixNano(), fileName)

	url, err := u.Store.Put(ctx, key, data, format.ContentType())
	if err != nil {
		return RegistrationResult{}, err
	}
	m, err := u.Materials.Create(ctx, &entity.Material{
		ClassID:     classID,
		FileName:    fileName,
		FileType:    format,
		FileURL:     url,
		FileKey:     key,
		FileSize:    int64(len(data)),
		ContentHash: sum[:],
		UploadedAt:  at,
	})
	if err != nil {
		return RegistrationResult{}, common.NewDomainError(common.ErrDatabase, "insert material", err)
	}

	u.Logger.Info("ingest.material.ok",
		"material_id", m.ID,
		"class_id", classID,
		"file_name", fileName,
		"format", format,
		"size", m.FileSize,
	)
	return RegistrationResult{
		MaterialID: m.ID,
		FileName:   m.FileName,
		Format:     m.FileType,
		FileKey:    m.FileKey,
		FileURL:    m.FileURL,
		Size:       m.FileSize,
		HashHex:    hex.EncodeToString(sum[:]),
		UploadedAt: m.UploadedAt,
	}, nil
}

func (u *Usecase) RegisterPath(ctx context.Context, classID uuid.UUID, path string) (RegistrationResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("abs path: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	// one extra byte tells an oversized file apart from one exactly at the limit
	data, err := io.ReadAll(io.LimitReader(f, u.MaxSize+1))
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("read: %w", err)
	}
	res, err := u.Register(ctx, classID, filepath.Base(abs), data)
	res.SourcePath = abs
	return res, err
}
