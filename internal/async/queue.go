package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one material adapted for a list of profiles.
type Job struct {
	ID          uuid.UUID
	MaterialID  uuid.UUID
	ProfileIDs  []uuid.UUID
	SubmittedAt time.Time
	TraceID     string
}

type JobState string

const (
	JobQueued    JobState = "QUEUED"
	JobRunning   JobState = "RUNNING"
	JobSucceeded JobState = "SUCCEEDED"
	JobFailed    JobState = "FAILED"
)

// JobStatus is the last known state of an enqueued job.
type JobStatus struct {
	Job        Job
	State      JobState
	Result     *pipeline.BatchResult
	Error      string
	FinishedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) (uuid.UUID, error)
	Status(id uuid.UUID) (JobStatus, bool)
	Shutdown(ctx context.Context)
}

// BatchRunner is satisfied by *pipeline.Processor.
type BatchRunner interface {
	ProcessBatch(ctx context.Context, materialID uuid.UUID, profileIDs []uuid.UUID) (pipeline.BatchResult, error)
}
