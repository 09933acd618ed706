package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/rules"
)

// Service handles student profile business logic.
type Service struct {
	classes  repository.ClassRepository
	profiles repository.StudentProfileRepository
	logger   *slog.Logger
}

// NewService creates a new profile service.
func NewService(classes repository.ClassRepository, profiles repository.StudentProfileRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{classes: classes, profiles: profiles, logger: logger}
}

// CreateProfileRequest represents profile creation parameters. Dimensions
// may be left empty; such a profile is stored but skipped by batches.
type CreateProfileRequest struct {
	ClassID      string `yaml:"-"`
	ProfileName  string `yaml:"name"`
	Fragmentacao string `yaml:"fragmentacao"`
	Abstracao    string `yaml:"abstracao"`
	Mediacao     string `yaml:"mediacao"`
	Dislexia     string `yaml:"dislexia"`
	TipoLetra    string `yaml:"tipo_letra"`
	Observacoes  string `yaml:"observacoes"`
}

const maxProfileName = 120

func (r CreateProfileRequest) normalized() CreateProfileRequest {
	r.ClassID = strings.TrimSpace(r.ClassID)
	r.ProfileName = strings.TrimSpace(r.ProfileName)
	r.Fragmentacao = constants.NormalizeDimension(r.Fragmentacao)
	r.Abstracao = constants.NormalizeDimension(r.Abstracao)
	r.Mediacao = constants.NormalizeDimension(r.Mediacao)
	r.Dislexia = constants.NormalizeDimension(r.Dislexia)
	r.TipoLetra = constants.NormalizeDimension(r.TipoLetra)
	return r
}

// CreateProfile validates and stores a new profile for an existing class.
func (s *Service) CreateProfile(ctx context.Context, req CreateProfileRequest) (*entity.StudentProfile, error) {
	req = req.normalized()

	v := common.NewValidator()
	v.Field("class_id", req.ClassID, common.Required, common.UUID)
	v.Field("profile_name", req.ProfileName, common.Required, common.MaxLength(maxProfileName))
	v.Field(constants.DimFragmentacao, req.Fragmentacao, common.OneOf(constants.DimensionValues(constants.DimFragmentacao)...))
	v.Field(constants.DimAbstracao, req.Abstracao, common.OneOf(constants.DimensionValues(constants.DimAbstracao)...))
	v.Field(constants.DimMediacao, req.Mediacao, common.OneOf(constants.DimensionValues(constants.DimMediacao)...))
	v.Field(constants.DimDislexia, req.Dislexia, common.OneOf(constants.DimensionValues(constants.DimDislexia)...))
	v.Field(constants.DimTipoLetra, req.TipoLetra, common.OneOf(constants.DimensionValues(constants.DimTipoLetra)...))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("invalid create profile request", "error", err)
		return nil, err
	}

	classID := uuid.MustParse(req.ClassID)
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		return nil, common.ToStatus(fmt.Errorf("class %s: %w", classID, err))
	}

	p := &entity.StudentProfile{
		ClassID:      classID,
		ProfileName:  req.ProfileName,
		Fragmentacao: constants.Fragmentation(req.Fragmentacao),
		Abstracao:    constants.Abstraction(req.Abstracao),
		Mediacao:     constants.Mediation(req.Mediacao),
		Dislexia:     constants.Dyslexia(req.Dislexia),
		TipoLetra:    constants.LetterStyle(req.TipoLetra),
	}
	if notes := strings.TrimSpace(req.Observacoes); notes != "" {
		p.Observacoes = &notes
	}

	created, err := s.profiles.Create(ctx, p)
	if err != nil {
		// DB error already logged in repository layer
		return nil, common.InternalErrorf("create profile: %v", err)
	}

	s.logger.Info("profile.create.ok",
		"profile_id", created.ID,
		"class_id", classID,
		"complete", rules.IsValid(*created),
	)
	return created, nil
}

// ListProfiles returns every profile of a class, complete or not.
func (s *Service) ListProfiles(ctx context.Context, classID string) ([]*entity.StudentProfile, error) {
	v := common.NewValidator()
	v.Field("class_id", classID, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	list, err := s.profiles.ListByClass(ctx, uuid.MustParse(classID))
	if err != nil {
		return nil, common.InternalErrorf("list profiles: %v", err)
	}
	s.logger.Info("profile.list.ok", "class_id", classID, "count", len(list))
	return list, nil
}

// Fixture is the YAML layout accepted by LoadProfilesYAML.
//
//	class: Turma A
//	profiles:
//	  - name: Perfil 1
//	    fragmentacao: alta
//	    ...
type Fixture struct {
	Class       string                 `yaml:"class"`
	Description string                 `yaml:"description"`
	Profiles    []CreateProfileRequest `yaml:"profiles"`
}

// LoadProfilesYAML creates the fixture's class when missing and adds every
// profile to it. The first invalid profile aborts the load.
func (s *Service) LoadProfilesYAML(ctx context.Context, r io.Reader) (*entity.Class, []*entity.StudentProfile, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, nil, common.NewDomainError(common.ErrInvalidInput, "decode profile fixture", err)
	}
	if strings.TrimSpace(fx.Class) == "" {
		return nil, nil, common.NewDomainError(common.ErrInvalidInput, "profile fixture: class is required", nil)
	}

	var desc *string
	if fx.Description != "" {
		desc = &fx.Description
	}
	class, err := s.classes.GetOrCreateByName(ctx, fx.Class, desc)
	if err != nil {
		return nil, nil, common.NewDomainError(common.ErrDatabase, "get or create class", err)
	}

	out := make([]*entity.StudentProfile, 0, len(fx.Profiles))
	for i, req := range fx.Profiles {
		req.ClassID = class.ID.String()
		p, err := s.CreateProfile(ctx, req)
		if err != nil {
			return class, out, fmt.Errorf("profile %d (%s): %w", i, req.ProfileName, err)
		}
		out = append(out, p)
	}
	s.logger.Info("profile.fixture.ok", "class_id", class.ID, "count", len(out))
	return class, out, nil
}
