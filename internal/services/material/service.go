package material

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/ingest"
)

// Service handles material registration.
type Service struct {
	registrar ingest.Registrar
	logger    *slog.Logger
}

func NewService(registrar ingest.Registrar, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registrar: registrar, logger: logger}
}

// RegisterRequest carries an uploaded material. ContentType is optional;
// when set it must agree with the file extension.
type RegisterRequest struct {
	ClassID     string
	FileName    string
	ContentType string
	Content     []byte
}

// RegisterMaterial stores an uploaded pdf/docx for a class.
func (s *Service) RegisterMaterial(ctx context.Context, req RegisterRequest) (ingest.RegistrationResult, error) {
	v := common.NewValidator()
	v.Field("class_id", req.ClassID, common.Required, common.UUID)
	v.Field("file_name", req.FileName, common.Required, common.MaxLength(255))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("invalid register material request", "error", err)
		return ingest.RegistrationResult{}, err
	}
	classID := uuid.MustParse(strings.TrimSpace(req.ClassID))

	if ct := strings.TrimSpace(req.ContentType); ct != "" {
		byType := constants.MapContentTypeToFormat(ct)
		byExt := constants.MapExtToFormat(filepath.Ext(req.FileName))
		if byType != byExt {
			return ingest.RegistrationResult{}, status.Errorf(codes.InvalidArgument,
				"content type %q does not match file %q", ct, req.FileName)
		}
	}

	res, err := s.registrar.Register(ctx, classID, req.FileName, req.Content)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) || errors.Is(err, common.ErrUnsupportedFormat) {
			return ingest.RegistrationResult{}, status.Error(codes.InvalidArgument, err.Error())
		}
		return ingest.RegistrationResult{}, common.ToStatus(err)
	}
	return res, nil
}

// DirectoryRequest registers every material under a server-side directory.
type DirectoryRequest struct {
	ClassID    string
	RootPath   string
	SkipHidden bool
}

// DirectoryResult pairs per-file outcomes with their totals.
type DirectoryResult struct {
	Statistics ingest.DirStats
	Results    []ingest.RegistrationResult
}

func (s *Service) RegisterDirectory(ctx context.Context, req DirectoryRequest) (*DirectoryResult, error) {
	v := common.NewValidator()
	v.Field("class_id", req.ClassID, common.Required, common.UUID)
	v.Field("root_path", req.RootPath, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	classID := uuid.MustParse(strings.TrimSpace(req.ClassID))

	results, stats, err := s.registrar.RegisterDirectory(ctx, classID, strings.TrimSpace(req.RootPath), req.SkipHidden)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "register directory: %v", err)
	}
	return &DirectoryResult{Statistics: stats, Results: results}, nil
}
