package server

import (
	"log/slog"
	"time"

	"github.com/joseph-ayodele/material-adapter/internal/async"
	"github.com/joseph-ayodele/material-adapter/internal/export"
	"github.com/joseph-ayodele/material-adapter/internal/ingest"
	"github.com/joseph-ayodele/material-adapter/internal/llm"
	"github.com/joseph-ayodele/material-adapter/internal/pipeline"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/services/adaptation"
	"github.com/joseph-ayodele/material-adapter/internal/services/material"
	"github.com/joseph-ayodele/material-adapter/internal/services/profile"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

// Components are the collaborators chosen at process start.
type Components struct {
	Stores       *repository.Stores
	Store        storage.ObjectStore
	LLM          llm.Adapter
	Codec        pipeline.DocumentCodec
	Concurrency  int
	QueueOptions []async.Option
	URLTTL       time.Duration
	Logger       *slog.Logger
}

// Stack is every wired use case. The daemon serves Service; the batch CLI
// calls Processor, Ingest, Profiles and Export directly.
type Stack struct {
	Processor *pipeline.Processor
	Queue     *async.BatchQueue
	Ingest    *ingest.Usecase
	Profiles  *profile.Service
	Export    *export.Service
	Service   *AdaptationService
}

func NewStack(c Components) *Stack {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := c.Stores

	extract := pipeline.NewExtractStage(st.Materials, c.Store, c.Codec, logger)
	adapt := pipeline.NewAdaptStage(st.Profiles, st.Adapted, c.Store, c.Codec, c.LLM, logger)
	proc := pipeline.NewProcessor(logger, extract, adapt, c.Concurrency)

	queue := async.NewBatchQueue(proc, logger, c.QueueOptions...)
	ing := ingest.NewUsecase(st.Classes, st.Materials, c.Store, logger)
	profiles := profile.NewService(st.Classes, st.Profiles, logger)
	exp := export.NewService(st.Materials, st.Profiles, st.Adapted, logger)

	adaptSvc := adaptation.NewService(proc, queue, st.Adapted, c.Store, exp, c.URLTTL, logger)
	materialSvc := material.NewService(ing, logger)

	return &Stack{
		Processor: proc,
		Queue:     queue,
		Ingest:    ing,
		Profiles:  profiles,
		Export:    exp,
		Service:   NewAdaptationService(adaptSvc, materialSvc, profiles, logger),
	}
}
