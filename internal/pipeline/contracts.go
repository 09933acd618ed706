package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/codec"
)

// DocumentCodec is the extract/render pair the stages depend on.
type DocumentCodec interface {
	Extract(ctx context.Context, data []byte, format constants.FileFormat) (codec.ExtractionResult, error)
	Render(ctx context.Context, text string, format constants.FileFormat, typo codec.Typography) ([]byte, error)
}

// SuccessRecord is one adapted copy produced by a batch.
type SuccessRecord struct {
	ProfileID         uuid.UUID
	ProfileName       string
	GeneratedFileName string
	StorageURL        string
	AdaptedMaterialID uuid.UUID
	Outcome           constants.AdaptOutcome
}

// ProfileOutcome is the per-profile entry of the batch fold.
type ProfileOutcome struct {
	ProfileID uuid.UUID
	Status    constants.ProfileStatus
	Reason    string         // empty on success
	Record    *SuccessRecord // set only on success
}

// BatchResult lists successes in input order. Zero successes is a valid result.
type BatchResult struct {
	Results      []SuccessRecord
	Profiles     []ProfileOutcome
	SuccessCount int
	Skipped      int
	Failed       int
	Cancelled    bool
}

func foldOutcomes(outcomes []ProfileOutcome) BatchResult {
	res := BatchResult{
		Results:  []SuccessRecord{},
		Profiles: outcomes,
	}
	for _, o := range outcomes {
		switch o.Status {
		case constants.ProfileSucceeded:
			res.Results = append(res.Results, *o.Record)
			res.SuccessCount++
		case constants.ProfileSkipped:
			res.Skipped++
		case constants.ProfileFailed:
			res.Failed++
		case constants.ProfileCancelled:
			res.Cancelled = true
		}
	}
	return res
}
