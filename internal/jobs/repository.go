// Package jobs implements the background processing pipeline's per-job-type
// handlers: ScanCollection, GenerateThumbnails, GenerateCache, CleanupCache.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/jobmodel"
)

// document is the persisted shape of a BackgroundJob.
type document struct {
	ID            uuid.UUID      `bson:"id" json:"id"`
	JobType       jobmodel.Type  `bson:"jobType" json:"jobType"`
	Status        jobmodel.Status `bson:"status" json:"status"`
	CollectionID  *uuid.UUID     `bson:"collectionId,omitempty" json:"collectionId,omitempty"`
	Payload       map[string]any `bson:"payload,omitempty" json:"payload,omitempty"`
	Progress      int            `bson:"progress" json:"progress"`
	ResultMessage *string        `bson:"resultMessage,omitempty" json:"resultMessage,omitempty"`
	ErrorMessage  *string        `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	StartedAt     *time.Time     `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt   *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt" json:"updatedAt"`
}

func toDocument(j *jobmodel.BackgroundJob) document {
	return document{
		ID:            j.ID(),
		JobType:       j.JobType(),
		Status:        j.Status(),
		CollectionID:  j.CollectionID(),
		Payload:       j.Payload(),
		Progress:      j.Progress(),
		ResultMessage: j.ResultMessage(),
		ErrorMessage:  j.ErrorMessage(),
		StartedAt:     j.StartedAt(),
		CompletedAt:   j.CompletedAt(),
		CreatedAt:     j.CreatedAt(),
		UpdatedAt:     j.UpdatedAt(),
	}
}

func fromDocument(d document) *jobmodel.BackgroundJob {
	return jobmodel.Reconstruct(
		d.ID, d.JobType, d.Status, d.CollectionID, d.Payload, d.Progress,
		d.ResultMessage, d.ErrorMessage, d.StartedAt, d.CompletedAt, d.CreatedAt, d.UpdatedAt,
	)
}

// Repository persists BackgroundJobs. The supervisor polls it for Pending
// work; handlers report progress and terminal status back through it.
type Repository struct {
	store docstore.Store
}

// NewRepository wraps a document store for BackgroundJob persistence.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Save upserts a job by id.
func (r *Repository) Save(ctx context.Context, j *jobmodel.BackgroundJob) error {
	return r.store.Upsert(ctx, docstore.CollBackgroundJobs, j.ID().String(), toDocument(j))
}

// FindByID loads a single job by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*jobmodel.BackgroundJob, error) {
	var d document
	if err := r.store.FindByID(ctx, docstore.CollBackgroundJobs, id.String(), &d); err != nil {
		return nil, err
	}
	return fromDocument(d), nil
}

// ListPending returns up to limit Pending jobs, oldest first, for the
// supervisor's poll-and-dispatch loop.
func (r *Repository) ListPending(ctx context.Context, limit int64) ([]*jobmodel.BackgroundJob, error) {
	var docs []document
	filter := bson.M{"status": jobmodel.StatusPending}
	sort := docstore.Sort{Field: "createdAt", Desc: false}
	if err := r.store.Find(ctx, docstore.CollBackgroundJobs, filter, sort, 0, limit, &docs); err != nil {
		return nil, err
	}
	out := make([]*jobmodel.BackgroundJob, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}
