package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"runtime/debug"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/codec"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
	"github.com/joseph-ayodele/material-adapter/internal/llm"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/rules"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

type AdaptStage struct {
	Profiles repository.StudentProfileRepository
	Adapted  repository.AdaptedMaterialRepository
	Store    storage.ObjectStore
	Codec    DocumentCodec
	LLM      llm.Adapter
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewAdaptStage(
	profiles repository.StudentProfileRepository,
	adapted repository.AdaptedMaterialRepository,
	store storage.ObjectStore,
	c DocumentCodec,
	adapter llm.Adapter,
	logger *slog.Logger,
) *AdaptStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdaptStage{
		Profiles: profiles,
		Adapted:  adapted,
		Store:    store,
		Codec:    c,
		LLM:      adapter,
		Logger:   logger,
		Now:      time.Now,
	}
}

// errSkip marks conditions that skip a profile rather than fail it.
var errSkip = errors.New("profile skipped")

// Run adapts the shared text for one profile. It never returns an error:
// every problem is folded into the outcome.
func (s *AdaptStage) Run(ctx context.Context, m *entity.Material, text string, profileID uuid.UUID) ProfileOutcome {
	start := time.Now()
	ctx = common.WithProfileID(ctx, profileID.String())
	log := s.Logger.With(
		"req_id", common.RequestIDFromContext(ctx),
		"material_id", m.ID,
		"profile_id", profileID,
	)

	rec, err := s.safeAdapt(ctx, log, m, text, profileID)
	switch {
	case err == nil:
		log.Info("batch.profile.ok",
			"file", rec.GeneratedFileName,
			"outcome", rec.Outcome,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return ProfileOutcome{ProfileID: profileID, Status: constants.ProfileSucceeded, Record: rec}
	case errors.Is(err, errSkip):
		log.Warn("batch.profile.skipped", "reason", err.Error())
		return ProfileOutcome{ProfileID: profileID, Status: constants.ProfileSkipped, Reason: err.Error()}
	default:
		log.Error("batch.profile.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return ProfileOutcome{ProfileID: profileID, Status: constants.ProfileFailed, Reason: err.Error()}
	}
}

// safeAdapt turns a panic anywhere in the profile's steps into an error so
// the rest of the batch keeps going.
func (s *AdaptStage) safeAdapt(ctx context.Context, log *slog.Logger, m *entity.Material, text string, profileID uuid.UUID) (rec *SuccessRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("batch.profile.panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			rec = nil
			err = fmt.Errorf("profile adaptation crashed: %v", r)
		}
	}()
	return s.adapt(ctx, log, m, text, profileID)
}

func (s *AdaptStage) adapt(ctx context.Context, log *slog.Logger, m *entity.Material, text string, profileID uuid.UUID) (*SuccessRecord, error) {
	p, err := s.Profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", errSkip, common.NewDomainError(common.ErrProfileNotFound, profileID.String(), err))
		}
		return nil, common.NewDomainError(common.ErrDatabase, "load profile", err)
	}
	vp, err := rules.Validate(*p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSkip, err)
	}

	directives := rules.Synthesize(vp)
	req := llm.AdaptRequest{
		SystemPrompt: llm.BuildSystemPrompt(directives, p.Notes()),
		UserText:     llm.BuildUserPrompt(text),
		OriginalText: text,
	}
	adapted, err := s.LLM.Adapt(ctx, req)
	if err != nil {
		return nil, err
	}
	if adapted.IsPassthrough() {
		log.Warn("batch.profile.passthrough", "reason", adapted.Reason)
	}

	out, err := s.Codec.Render(ctx, adapted.Text, m.FileType, codec.TypographyFor(vp.Profile()))
	if err != nil {
		return nil, err
	}

	fileName := GeneratedFileName(m.FileName, p.ProfileName, m.FileType)
	key := AdaptedKey(m, p.ID, s.Now(), fileName)
	url, err := s.Store.Put(ctx, key, out, m.FileType.ContentType())
	if err != nil {
		return nil, err
	}

	row, err := s.Adapted.Create(ctx, &entity.AdaptedMaterial{
		MaterialID:      m.ID,
		ProfileID:       p.ID,
		AdaptedFileName: fileName,
		AdaptedFileURL:  url,
		AdaptedFileKey:  key,
		AdaptedFileSize: int64(len(out)),
		Outcome:         adapted.Outcome,
		AdaptedAt:       s.Now(),
	})
	if err != nil {
		return nil, common.NewDomainError(common.ErrDatabase, "insert adapted material", err)
	}

	return &SuccessRecord{
		ProfileID:         p.ID,
		ProfileName:       p.ProfileName,
		GeneratedFileName: fileName,
		StorageURL:        url,
		AdaptedMaterialID: row.ID,
		Outcome:           adapted.Outcome,
	}, nil
}

// GeneratedFileName is <base>_<profileName>.<ext> with both parts sanitized.
func GeneratedFileName(materialFileName, profileName string, format constants.FileFormat) string {
	base := strings.TrimSuffix(path.Base(materialFileName), path.Ext(materialFileName))
	return sanitizeName(base, "material") + "_" + sanitizeName(profileName, "perfil") + "." + string(format)
}

// AdaptedKey never repeats for a re-run, so stored history is append-only.
func AdaptedKey(m *entity.Material, profileID uuid.UUID, at time.Time, fileName string) string {
	return fmt.Sprintf("adapted/%s/%s/%s/%d-%s", m.ClassID, m.ID, profileID, at.UnixNano(), fileName)
}

// sanitizeName keeps letters, digits, '-' and '_'; every other run becomes '_'.
func sanitizeName(s, fallback string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return fallback
	}
	return out
}
