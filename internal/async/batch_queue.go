package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/internal/common"
)

type BatchQueue struct {
	runner  BatchRunner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	quit    chan struct{}
	wg      sync.WaitGroup
	sending sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
	jobs   map[uuid.UUID]*JobStatus
}

type Option func(*BatchQueue)

func WithWorkers(n int) Option {
	return func(q *BatchQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *BatchQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithJobTimeout(d time.Duration) Option {
	return func(q *BatchQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewBatchQueue(runner BatchRunner, logger *slog.Logger, opts ...Option) *BatchQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &BatchQueue{
		runner:  runner,
		logger:  logger,
		workers: 2,
		timeout: 15 * time.Minute,
		ch:      make(chan Job, 64),
		quit:    make(chan struct{}),
		jobs:    make(map[uuid.UUID]*JobStatus),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *BatchQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.start", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("queue.worker.stop", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *BatchQueue) run(workerID int, job Job) {
	q.setState(job.ID, func(s *JobStatus) { s.State = JobRunning })

	ctx := common.WithRequestID(context.Background(), job.TraceID)
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	res, err := q.runner.ProcessBatch(ctx, job.MaterialID, job.ProfileIDs)
	cancel()

	if err != nil {
		q.logger.Error("queue.job.failed",
			"worker_id", workerID, "job_id", job.ID, "material_id", job.MaterialID, "error", err)
		q.setState(job.ID, func(s *JobStatus) {
			s.State = JobFailed
			s.Error = err.Error()
			s.FinishedAt = time.Now().UTC()
		})
		return
	}
	q.logger.Info("queue.job.ok",
		"worker_id", workerID,
		"job_id", job.ID,
		"material_id", job.MaterialID,
		"succeeded", res.SuccessCount,
		"cancelled", res.Cancelled,
		"queued_ms", time.Since(job.SubmittedAt).Milliseconds(),
	)
	q.setState(job.ID, func(s *JobStatus) {
		s.State = JobSucceeded
		s.Result = &res
		s.FinishedAt = time.Now().UTC()
	})
}

func (q *BatchQueue) setState(id uuid.UUID, fn func(*JobStatus)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := q.jobs[id]; ok {
		fn(s)
	}
}

// Enqueue assigns missing IDs and timestamps, then hands the job to a worker.
// A full queue blocks until a slot frees up or ctx ends.
func (q *BatchQueue) Enqueue(ctx context.Context, job Job) (uuid.UUID, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	if job.TraceID == "" {
		job.TraceID = common.RequestIDFromContext(ctx)
	}
	if job.TraceID == "" {
		job.TraceID = job.ID.String()
	}
	job.ProfileIDs = append([]uuid.UUID(nil), job.ProfileIDs...)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("queue.enqueue.closed", "material_id", job.MaterialID)
		return uuid.Nil, ErrQueueClosed
	}
	q.jobs[job.ID] = &JobStatus{Job: job, State: JobQueued}
	q.sending.Add(1)
	q.mu.Unlock()
	defer q.sending.Done()

	// the send happens without q.mu; workers take it to record state
	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue.enqueue.backpressure", "job_id", job.ID, "material_id", job.MaterialID)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			q.forget(job.ID)
			return uuid.Nil, ctx.Err()
		case <-q.quit:
			q.forget(job.ID)
			return uuid.Nil, ErrQueueClosed
		}
	}
	q.logger.Info("queue.enqueue.ok",
		"job_id", job.ID, "material_id", job.MaterialID, "profiles", len(job.ProfileIDs))
	return job.ID, nil
}

func (q *BatchQueue) forget(id uuid.UUID) {
	q.mu.Lock()
	delete(q.jobs, id)
	q.mu.Unlock()
}

// Status returns a copy of the job's current state.
func (q *BatchQueue) Status(id uuid.UUID) (JobStatus, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.jobs[id]
	if !ok {
		return JobStatus{}, false
	}
	return *s, true
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx to end.
func (q *BatchQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.quit)
	q.mu.Unlock()

	// blocked senders see quit and leave before the channel closes
	q.sending.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.ok")
	}
}
