package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/internal/codec"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

type ExtractStage struct {
	Materials repository.MaterialRepository
	Store     storage.ObjectStore
	Codec     DocumentCodec
	Logger    *slog.Logger
}

func NewExtractStage(materials repository.MaterialRepository, store storage.ObjectStore, c DocumentCodec, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Materials: materials, Store: store, Codec: c, Logger: logger}
}

// Run loads the material, reads its binary and extracts the text shared by
// every profile of the batch. Every error it returns is batch-fatal.
func (s *ExtractStage) Run(ctx context.Context, materialID uuid.UUID) (*entity.Material, codec.ExtractionResult, error) {
	m, err := s.Materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, codec.ExtractionResult{}, common.NewDomainError(common.ErrMaterialNotFound, "material "+materialID.String(), err)
		}
		return nil, codec.ExtractionResult{}, common.NewDomainError(common.ErrDatabase, "load material", err)
	}

	if !m.FileType.Valid() {
		return m, codec.ExtractionResult{}, common.NewDomainError(common.ErrUnsupportedFormat, "material format "+string(m.FileType), nil)
	}

	data, err := s.Store.Read(ctx, m.FileKey)
	if err != nil {
		return m, codec.ExtractionResult{}, common.NewDomainError(common.ErrExtraction, "read material binary", err)
	}

	res, err := s.Codec.Extract(ctx, data, m.FileType)
	if err != nil {
		if errors.Is(err, common.ErrExtraction) || errors.Is(err, common.ErrUnsupportedFormat) {
			return m, res, err
		}
		return m, res, common.NewDomainError(common.ErrExtraction, "extract text", err)
	}
	return m, res, nil
}
