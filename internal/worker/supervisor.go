// Package worker runs the background processing pipeline's supervisor
// loop: poll the Pending job collection, dispatch each job under a
// concurrency ceiling, and persist its lifecycle transitions.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/collectionvault/index-engine/internal/infra/events"
	"github.com/collectionvault/index-engine/internal/jobmodel"
	"github.com/collectionvault/index-engine/internal/jobs"
)

const defaultErrorBackoffMultiplier = 2

// Supervisor polls for Pending jobs and drives each one through Start,
// Dispatch, and its terminal Complete/Fail transition. Jobs run at most
// Concurrency at a time; the poll interval doubles after a failed poll
// and resets on the next success.
type Supervisor struct {
	jobs         *jobs.Repository
	handlers     *jobs.Handlers
	concurrency  int
	pollInterval time.Duration
	errInterval  time.Duration
	broadcaster  *events.Broadcaster
}

// SetBroadcaster wires an SSE broadcaster so job lifecycle transitions are
// published to connected clients. Optional; a nil broadcaster is a no-op.
func (s *Supervisor) SetBroadcaster(b *events.Broadcaster) {
	s.broadcaster = b
}

func (s *Supervisor) publish(eventType string, job *jobmodel.BackgroundJob) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(events.Event{
		Type:         eventType,
		JobID:        job.ID(),
		JobType:      job.JobType(),
		Status:       job.Status(),
		Progress:     job.Progress(),
		ErrorMessage: job.ErrorMessage(),
	})
}

// NewSupervisor builds a supervisor with the given concurrency ceiling and
// base poll interval. The error-path interval is the base doubled.
func NewSupervisor(jobRepo *jobs.Repository, handlers *jobs.Handlers, concurrency int, pollInterval time.Duration) *Supervisor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Supervisor{
		jobs:         jobRepo,
		handlers:     handlers,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		errInterval:  pollInterval * defaultErrorBackoffMultiplier,
	}
}

// Start runs the poll loop until ctx is cancelled. It never returns a
// non-nil error except ctx.Err() on shutdown.
func (s *Supervisor) Start(ctx context.Context) error {
	sem := make(chan struct{}, s.concurrency)
	interval := s.pollInterval

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		pending, err := s.jobs.ListPending(ctx, int64(s.concurrency))
		if err != nil {
			log.Printf("list pending jobs: %v", err)
			interval = s.errInterval
			continue
		}
		interval = s.pollInterval

		for _, job := range pending {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}

			go func(job *jobmodel.BackgroundJob) {
				defer func() { <-sem }()
				s.runJob(ctx, job)
			}(job)
		}
	}
}

// runJob drives one job through its full lifecycle. Persistence failures
// after the handler has already run are logged, not re-raised: the job's
// in-memory terminal state was reached correctly, and a dropped write will
// surface on the next reconciliation pass rather than corrupt the result.
func (s *Supervisor) runJob(ctx context.Context, job *jobmodel.BackgroundJob) {
	if err := job.Start(); err != nil {
		log.Printf("start job %s: %v", job.ID(), err)
		return
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		log.Printf("persist running job %s: %v", job.ID(), err)
	}
	s.publish("job.started", job)

	result, err := s.handlers.Dispatch(ctx, job)
	if err != nil {
		if ferr := job.Fail(err.Error()); ferr != nil {
			log.Printf("fail job %s: %v", job.ID(), ferr)
		}
	} else if cerr := job.Complete(result); cerr != nil {
		log.Printf("complete job %s: %v", job.ID(), cerr)
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		log.Printf("persist terminal job %s: %v", job.ID(), err)
	}
	if job.Status() == jobmodel.StatusFailed {
		s.publish("job.failed", job)
	} else {
		s.publish("job.completed", job)
	}
}
