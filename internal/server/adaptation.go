package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/services/adaptation"
	"github.com/joseph-ayodele/material-adapter/internal/services/material"
	"github.com/joseph-ayodele/material-adapter/internal/services/profile"
	"github.com/joseph-ayodele/material-adapter/internal/utils"
)

// AdaptationService adapts gRPC structs to the service layer.
type AdaptationService struct {
	UnimplementedAdaptationServer
	adapt     *adaptation.Service
	materials *material.Service
	profiles  *profile.Service
	logger    *slog.Logger
}

func NewAdaptationService(adapt *adaptation.Service, materials *material.Service, profiles *profile.Service, logger *slog.Logger) *AdaptationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdaptationService{adapt: adapt, materials: materials, profiles: profiles, logger: logger}
}

var _ AdaptationServer = (*AdaptationService)(nil)

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return s, nil
}

func batchRequest(req *structpb.Struct) (adaptation.BatchRequest, error) {
	ids, err := utils.StringListField(req, "profile_ids")
	if err != nil {
		return adaptation.BatchRequest{}, common.InvalidArgumentError(err.Error())
	}
	return adaptation.BatchRequest{MaterialID: utils.StringField(req, "material_id"), ProfileIDs: ids}, nil
}

// ProcessMaterial runs a batch and returns its result.
func (s *AdaptationService) ProcessMaterial(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	br, err := batchRequest(req)
	if err != nil {
		return nil, err
	}
	res, err := s.adapt.ProcessMaterial(ctx, br)
	if err != nil {
		return nil, err
	}
	return toStruct(utils.ToPBBatchResult(res))
}

// EnqueueBatch queues a batch and returns its job id.
func (s *AdaptationService) EnqueueBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	br, err := batchRequest(req)
	if err != nil {
		return nil, err
	}
	id, err := s.adapt.EnqueueBatch(ctx, br)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"job_id": id.String()})
}

func (s *AdaptationService) GetBatchStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	st, err := s.adapt.BatchStatus(ctx, utils.StringField(req, "job_id"))
	if err != nil {
		return nil, err
	}
	return toStruct(utils.ToPBJobStatus(st))
}

// RegisterMaterial stores a base64 uploaded file as a new material.
func (s *AdaptationService) RegisterMaterial(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	content, err := utils.BytesField(req, "content")
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	res, err := s.materials.RegisterMaterial(ctx, material.RegisterRequest{
		ClassID:     utils.StringField(req, "class_id"),
		FileName:    utils.StringField(req, "file_name"),
		ContentType: utils.StringField(req, "content_type"),
		Content:     content,
	})
	if err != nil {
		return nil, err
	}
	return toStruct(utils.ToPBMaterial(res))
}

// RegisterDirectory registers every pdf/docx under a directory on the server
// host. Hidden files are skipped unless skip_hidden is false.
func (s *AdaptationService) RegisterDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.materials.RegisterDirectory(ctx, material.DirectoryRequest{
		ClassID:    utils.StringField(req, "class_id"),
		RootPath:   utils.StringField(req, "root_path"),
		SkipHidden: utils.BoolField(req, "skip_hidden", true),
	})
	if err != nil {
		return nil, err
	}
	return toStruct(utils.ToPBDirectory(res.Results, res.Statistics))
}

func (s *AdaptationService) CreateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.profiles.CreateProfile(ctx, profile.CreateProfileRequest{
		ClassID:      utils.StringField(req, "class_id"),
		ProfileName:  utils.StringField(req, "profile_name"),
		Fragmentacao: utils.StringField(req, "fragmentacao"),
		Abstracao:    utils.StringField(req, "abstracao"),
		Mediacao:     utils.StringField(req, "mediacao"),
		Dislexia:     utils.StringField(req, "dislexia"),
		TipoLetra:    utils.StringField(req, "tipo_letra"),
		Observacoes:  utils.StringField(req, "observacoes"),
	})
	if err != nil {
		return nil, err
	}
	return toStruct(utils.ToPBProfile(p))
}

func (s *AdaptationService) ListProfiles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.profiles.ListProfiles(ctx, utils.StringField(req, "class_id"))
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"profiles": utils.ToPBProfiles(list)})
}

func (s *AdaptationService) GetDownloadURL(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	url, expires, err := s.adapt.GetDownloadURL(ctx, utils.StringField(req, "adapted_material_id"))
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"url": url, "expires_at": expires.Format(time.RFC3339)})
}

// ExportHistory returns the XLSX workbook base64 encoded.
func (s *AdaptationService) ExportHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	out, err := s.adapt.ExportHistory(ctx, utils.StringField(req, "material_id"))
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{
		"xlsx":       base64.StdEncoding.EncodeToString(out),
		"size_bytes": len(out),
	})
}
