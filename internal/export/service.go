package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
)

// Service turns the adaptation history of a material into XLSX bytes.
type Service struct {
	materials repository.MaterialRepository
	profiles  repository.StudentProfileRepository
	adapted   repository.AdaptedMaterialRepository
	logger    *slog.Logger
}

func NewService(
	materials repository.MaterialRepository,
	profiles repository.StudentProfileRepository,
	adapted repository.AdaptedMaterialRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{materials: materials, profiles: profiles, adapted: adapted, logger: logger}
}

const historySheet = "Historico"

var historyHeaders = []string{
	"Adaptado em",
	"Perfil",
	"Arquivo",
	"Resultado",
	"Tamanho (bytes)",
	"URL",
}

// ExportHistoryXLSX returns one row per adapted copy of materialID, oldest first.
// A material with no history still yields a workbook with the header row.
func (s *Service) ExportHistoryXLSX(ctx context.Context, materialID uuid.UUID) ([]byte, error) {
	start := time.Now()

	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewDomainError(common.ErrMaterialNotFound, "material "+materialID.String(), err)
		}
		return nil, fmt.Errorf("load material: %w", err)
	}
	rows, err := s.adapted.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("query adapted materials: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, err
	}
	for i, h := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, h)
	}

	// profile names are looked up once per profile
	names := make(map[uuid.UUID]string)
	profileName := func(id uuid.UUID) string {
		if n, ok := names[id]; ok {
			return n
		}
		n := id.String()
		if p, err := s.profiles.GetByID(ctx, id); err == nil {
			n = p.ProfileName
		}
		names[id] = n
		return n
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(historySheet, cell, v)
		}
		write(1, r.AdaptedAt.UTC().Format(time.RFC3339))
		write(2, profileName(r.ProfileID))
		write(3, r.AdaptedFileName)
		write(4, string(r.Outcome))
		write(5, r.AdaptedFileSize)
		write(6, r.AdaptedFileURL)
	}

	_ = f.SetColWidth(historySheet, "A", "A", 22)
	_ = f.SetColWidth(historySheet, "B", "B", 24)
	_ = f.SetColWidth(historySheet, "C", "C", 36)
	_ = f.SetColWidth(historySheet, "D", "E", 16)
	_ = f.SetColWidth(historySheet, "F", "F", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"material_id", materialID.String(),
		"file_name", m.FileName,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
