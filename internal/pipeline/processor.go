package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
)

// Processor coordinates the shared extraction then one adaptation per profile.
type Processor struct {
	Logger      *slog.Logger
	Extract     *ExtractStage
	Adapt       *AdaptStage
	Concurrency int
}

func NewProcessor(logger *slog.Logger, extract *ExtractStage, adapt *AdaptStage, concurrency int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{Logger: logger, Extract: extract, Adapt: adapt, Concurrency: concurrency}
}

// ProcessBatch adapts one material for every profile ID, in caller order.
//
// Only a missing material or a failed extraction returns an error. Per-profile
// problems become skipped or failed outcomes. When ctx ends, profiles that
// have not started are marked cancelled and the partial result is returned
// with a nil error.
func (p *Processor) ProcessBatch(ctx context.Context, materialID uuid.UUID, profileIDs []uuid.UUID) (BatchResult, error) {
	start := time.Now()
	if len(profileIDs) == 0 {
		return foldOutcomes(nil), nil
	}
	if common.RequestIDFromContext(ctx) == "" {
		ctx = common.WithRequestID(ctx, uuid.NewString())
	}
	ctx = common.WithMaterialID(ctx, materialID.String())
	reqID := common.RequestIDFromContext(ctx)

	p.Logger.Info("batch.start",
		"req_id", reqID,
		"material_id", materialID,
		"profiles", len(profileIDs),
		"concurrency", p.Concurrency,
	)

	m, ext, err := p.Extract.Run(ctx, materialID)
	if err != nil {
		p.Logger.Error("batch.extract.failed", "req_id", reqID, "material_id", materialID, "error", err)
		return BatchResult{}, err
	}
	p.Logger.Info("batch.extract.ok",
		"req_id", reqID,
		"material_id", materialID,
		"format", m.FileType,
		"text_len", len(ext.Text),
		"pages", ext.Pages,
	)

	outcomes := make([]ProfileOutcome, len(profileIDs))
	runOne := func(i int) {
		if ctx.Err() != nil {
			outcomes[i] = ProfileOutcome{ProfileID: profileIDs[i], Status: constants.ProfileCancelled, Reason: ctx.Err().Error()}
			return
		}
		outcomes[i] = p.Adapt.Run(ctx, m, ext.Text, profileIDs[i])
	}

	if p.Concurrency <= 1 {
		for i := range profileIDs {
			runOne(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.Concurrency)
		for i := range profileIDs {
			g.Go(func() error {
				runOne(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := foldOutcomes(outcomes)
	level := slog.LevelInfo
	if res.Cancelled {
		level = slog.LevelWarn
	}
	p.Logger.Log(ctx, level, "batch.done",
		"req_id", reqID,
		"material_id", materialID,
		"succeeded", res.SuccessCount,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"cancelled", res.Cancelled,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
