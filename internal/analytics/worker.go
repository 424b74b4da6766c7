package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/storage"
)

// JobStore abstracts the job queue operations.
type JobStore interface {
	ClaimNextJob(types []string) (*storage.Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error
}

// Outcomes counts processed jobs. Implemented by *metrics.Metrics.
type Outcomes interface {
	IncrementOutboxJob(status string)
}

// Worker delivers analytics_event jobs from the SQLite job queue to a sink.
type Worker struct {
	store    JobStore
	sink     Sink
	outcomes Outcomes
	poll     time.Duration
	logger   *slog.Logger
}

// NewWorker creates a Worker with the given dependencies. outcomes may be
// nil. If pollInterval is <= 0, it defaults to 500ms.
func NewWorker(store JobStore, sink Sink, outcomes Outcomes, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		store:    store,
		sink:     sink,
		outcomes: outcomes,
		poll:     pollInterval,
		logger:   slog.Default(),
	}
}

// Run polls for jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		done, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("analytics worker iteration failed", "error", err)
		}
		if done {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and delivers a single analytics_event job.
// Returns true if a job was processed (regardless of success/failure).
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextJob([]string{JobType})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	if err := w.processJob(ctx, job); err != nil {
		w.logger.Warn("analytics job failed", "job_id", job.ID, "attempt", job.Attempts+1, "error", err)
		w.record("retry")
		if failErr := w.store.FailJob(job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		return true, nil
	}

	if err := w.store.CompleteJob(job.ID); err != nil {
		return true, fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	w.record("done")
	return true, nil
}

func (w *Worker) processJob(ctx context.Context, job *storage.Job) error {
	var ev numerology.CalculationEvent
	if err := json.Unmarshal([]byte(job.PayloadJSON), &ev); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = job.CreatedAt
	}
	return w.sink.Deliver(WithJobID(ctx, job.ID), ev)
}

func (w *Worker) record(status string) {
	if w.outcomes != nil {
		w.outcomes.IncrementOutboxJob(status)
	}
}
