package adaptation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/material-adapter/internal/async"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/pipeline"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

// HistoryExporter is satisfied by *export.Service.
type HistoryExporter interface {
	ExportHistoryXLSX(ctx context.Context, materialID uuid.UUID) ([]byte, error)
}

// Service validates transport input and maps domain errors to gRPC codes.
type Service struct {
	runner   async.BatchRunner
	queue    async.Queue
	adapted  repository.AdaptedMaterialRepository
	store    storage.ObjectStore
	exporter HistoryExporter
	urlTTL   time.Duration
	logger   *slog.Logger
}

func NewService(
	runner async.BatchRunner,
	queue async.Queue,
	adapted repository.AdaptedMaterialRepository,
	store storage.ObjectStore,
	exporter HistoryExporter,
	urlTTL time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &Service{
		runner:   runner,
		queue:    queue,
		adapted:  adapted,
		store:    store,
		exporter: exporter,
		urlTTL:   urlTTL,
		logger:   logger,
	}
}

// BatchRequest names a material and the profiles to adapt it for.
type BatchRequest struct {
	MaterialID string
	ProfileIDs []string
}

func (r BatchRequest) parse() (uuid.UUID, []uuid.UUID, error) {
	v := common.NewValidator()
	v.Field("material_id", strings.TrimSpace(r.MaterialID), common.Required, common.UUID)
	v.Field("profile_ids", r.ProfileIDs, common.UUIDList)
	if err := common.ValidateAndReturnError(v); err != nil {
		return uuid.Nil, nil, err
	}
	ids := make([]uuid.UUID, len(r.ProfileIDs))
	for i, s := range r.ProfileIDs {
		ids[i] = uuid.MustParse(s)
	}
	return uuid.MustParse(strings.TrimSpace(r.MaterialID)), ids, nil
}

// ProcessMaterial runs a batch synchronously.
func (s *Service) ProcessMaterial(ctx context.Context, req BatchRequest) (pipeline.BatchResult, error) {
	materialID, profileIDs, err := req.parse()
	if err != nil {
		s.logger.Error("invalid process material request", "error", err)
		return pipeline.BatchResult{}, err
	}
	res, err := s.runner.ProcessBatch(ctx, materialID, profileIDs)
	if err != nil {
		if common.IsBatchFatal(err) {
			s.logger.Warn("batch.rejected", "material_id", materialID, "error", err)
		}
		return pipeline.BatchResult{}, common.ToStatus(err)
	}
	return res, nil
}

// EnqueueBatch hands a batch to the background queue and returns its job id.
func (s *Service) EnqueueBatch(ctx context.Context, req BatchRequest) (uuid.UUID, error) {
	materialID, profileIDs, err := req.parse()
	if err != nil {
		return uuid.Nil, err
	}
	id, err := s.queue.Enqueue(ctx, async.Job{MaterialID: materialID, ProfileIDs: profileIDs})
	if err != nil {
		if errors.Is(err, async.ErrQueueClosed) {
			return uuid.Nil, status.Error(codes.Unavailable, err.Error())
		}
		return uuid.Nil, status.FromContextError(err).Err()
	}
	return id, nil
}

// BatchStatus reports the state of an enqueued job.
func (s *Service) BatchStatus(_ context.Context, jobID string) (async.JobStatus, error) {
	v := common.NewValidator()
	v.Field("job_id", jobID, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return async.JobStatus{}, err
	}
	st, ok := s.queue.Status(uuid.MustParse(jobID))
	if !ok {
		return async.JobStatus{}, common.NotFoundError("job " + jobID + " not found")
	}
	return st, nil
}

// GetDownloadURL signs a short-lived URL for one adapted copy.
func (s *Service) GetDownloadURL(ctx context.Context, adaptedMaterialID string) (string, time.Time, error) {
	v := common.NewValidator()
	v.Field("adapted_material_id", adaptedMaterialID, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return "", time.Time{}, err
	}
	row, err := s.adapted.GetByID(ctx, uuid.MustParse(adaptedMaterialID))
	if err != nil {
		return "", time.Time{}, common.ToStatus(err)
	}
	expires := time.Now().UTC().Add(s.urlTTL)
	url, err := s.store.SignedURL(ctx, row.AdaptedFileKey, s.urlTTL)
	if err != nil {
		return "", time.Time{}, common.ToStatus(err)
	}
	s.logger.Info("download.url.ok", "adapted_material_id", row.ID, "ttl", s.urlTTL.String())
	return url, expires, nil
}

// ExportHistory returns the XLSX history of a material.
func (s *Service) ExportHistory(ctx context.Context, materialID string) ([]byte, error) {
	v := common.NewValidator()
	v.Field("material_id", materialID, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	out, err := s.exporter.ExportHistoryXLSX(ctx, uuid.MustParse(materialID))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return out, nil
}
