// Package jobmodel defines the BackgroundJob entity that the background
// processing pipeline persists, schedules, and reports progress against.
package jobmodel

import (
	"time"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/shared"
)

// Type names the four job handlers the pipeline supports.
type Type string

const (
	TypeScanCollection     Type = "ScanCollection"
	TypeGenerateThumbnails Type = "GenerateThumbnails"
	TypeGenerateCache      Type = "GenerateCache"
	TypeCleanupCache       Type = "CleanupCache"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeScanCollection, TypeGenerateThumbnails, TypeGenerateCache, TypeCleanupCache:
		return true
	default:
		return false
	}
}

// Status is a BackgroundJob's position in its lifecycle. Transitions are
// monotone: Pending -> Running -> {Completed | Failed | Cancelled}. No
// transition is ever skipped.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusRunning   Status = "Running"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// BackgroundJob is a single unit of work queued for the background
// processing pipeline.
type BackgroundJob struct {
	id            uuid.UUID
	jobType       Type
	status        Status
	collectionID  *uuid.UUID
	payload       map[string]any
	progress      int
	resultMessage *string
	errorMessage  *string
	startedAt     *time.Time
	completedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewBackgroundJob creates a Pending job of the given type.
func NewBackgroundJob(jobType Type, collectionID *uuid.UUID, payload map[string]any) (*BackgroundJob, error) {
	if !jobType.IsValid() {
		return nil, shared.NewFieldError(shared.ErrInvalidInput, "job_type", "unknown job type")
	}

	now := time.Now()
	return &BackgroundJob{
		id:           shared.NewUUID(),
		jobType:      jobType,
		status:       StatusPending,
		collectionID: collectionID,
		payload:      payload,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a BackgroundJob from a persisted record.
func Reconstruct(
	id uuid.UUID,
	jobType Type,
	status Status,
	collectionID *uuid.UUID,
	payload map[string]any,
	progress int,
	resultMessage, errorMessage *string,
	startedAt, completedAt *time.Time,
	createdAt, updatedAt time.Time,
) *BackgroundJob {
	return &BackgroundJob{
		id:            id,
		jobType:       jobType,
		status:        status,
		collectionID:  collectionID,
		payload:       payload,
		progress:      progress,
		resultMessage: resultMessage,
		errorMessage:  errorMessage,
		startedAt:     startedAt,
		completedAt:   completedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (j *BackgroundJob) ID() uuid.UUID              { return j.id }
func (j *BackgroundJob) JobType() Type              { return j.jobType }
func (j *BackgroundJob) Status() Status             { return j.status }
func (j *BackgroundJob) CollectionID() *uuid.UUID   { return j.collectionID }
func (j *BackgroundJob) Payload() map[string]any    { return j.payload }
func (j *BackgroundJob) Progress() int              { return j.progress }
func (j *BackgroundJob) ResultMessage() *string     { return j.resultMessage }
func (j *BackgroundJob) ErrorMessage() *string      { return j.errorMessage }
func (j *BackgroundJob) StartedAt() *time.Time      { return j.startedAt }
func (j *BackgroundJob) CompletedAt() *time.Time    { return j.completedAt }
func (j *BackgroundJob) CreatedAt() time.Time       { return j.createdAt }
func (j *BackgroundJob) UpdatedAt() time.Time       { return j.updatedAt }

// Start transitions Pending -> Running, stamping startedAt. Calling it on
// any other status returns a conflict error and leaves the job unchanged,
// preserving the monotone lifecycle.
func (j *BackgroundJob) Start() error {
	if j.status != StatusPending {
		return shared.NewFieldError(shared.ErrConflict, "status", "job is not pending")
	}
	now := time.Now()
	j.status = StatusRunning
	j.startedAt = &now
	j.updatedAt = now
	return nil
}

// UpdateProgress records incremental completion, valid only while Running.
func (j *BackgroundJob) UpdateProgress(progress int) {
	j.progress = progress
	j.updatedAt = time.Now()
}

// Complete transitions Running -> Completed, persisting resultMessage.
func (j *BackgroundJob) Complete(resultMessage string) error {
	if j.status != StatusRunning {
		return shared.NewFieldError(shared.ErrConflict, "status", "job is not running")
	}
	now := time.Now()
	j.status = StatusCompleted
	j.resultMessage = &resultMessage
	j.completedAt = &now
	j.updatedAt = now
	return nil
}

// Fail transitions Running -> Failed, persisting errorMessage.
func (j *BackgroundJob) Fail(errorMessage string) error {
	if j.status != StatusRunning {
		return shared.NewFieldError(shared.ErrConflict, "status", "job is not running")
	}
	now := time.Now()
	j.status = StatusFailed
	j.errorMessage = &errorMessage
	j.completedAt = &now
	j.updatedAt = now
	return nil
}

// Cancel transitions Pending or Running -> Cancelled.
func (j *BackgroundJob) Cancel() error {
	if j.status.IsTerminal() {
		return shared.NewFieldError(shared.ErrConflict, "status", "job is already terminal")
	}
	now := time.Now()
	j.status = StatusCancelled
	j.completedAt = &now
	j.updatedAt = now
	return nil
}
