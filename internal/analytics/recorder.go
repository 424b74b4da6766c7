// Package analytics moves calculation events out of the request path. The
// Recorder writes each event to the SQLite job table and the Worker later
// delivers queued events to one or more sinks.
package analytics

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/storage"
)

// JobType is the job queue type for calculation events.
const JobType = "analytics_event"

// JobEnqueuer adds jobs to the queue. Implemented by storage.Store.
type JobEnqueuer interface {
	EnqueueJob(job storage.Job) error
}

// Recorder is a numerology.Observer that queues every event for the
// Worker. Enqueue failures are logged and dropped.
type Recorder struct {
	store  JobEnqueuer
	logger *slog.Logger
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store JobEnqueuer) *Recorder {
	return &Recorder{store: store, logger: slog.Default()}
}

// CalculationPerformed implements numerology.Observer.
func (r *Recorder) CalculationPerformed(_ context.Context, ev numerology.CalculationEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.Error("encoding analytics event", "error", err)
		return
	}
	job := storage.Job{
		ID:          uuid.NewString(),
		Type:        JobType,
		PayloadJSON: string(payload),
	}
	if err := r.store.EnqueueJob(job); err != nil {
		r.logger.Warn("queueing analytics event failed", "kind", ev.Kind, "error", err)
	}
}
