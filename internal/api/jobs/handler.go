// Package jobs exposes background-processing-pipeline job creation and
// status lookup over HTTP; the supervisor does the actual work.
package jobs

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/infra/events"
	"github.com/collectionvault/index-engine/internal/jobmodel"
	pipeline "github.com/collectionvault/index-engine/internal/jobs"
)

// Handler adapts jobs.Repository to HTTP operations.
type Handler struct {
	jobs        *pipeline.Repository
	broadcaster *events.Broadcaster
}

// NewHandler wraps a job repository for the jobs façade. broadcaster may be
// nil, in which case the SSE stream route is not registered.
func NewHandler(jobRepo *pipeline.Repository, broadcaster *events.Broadcaster) *Handler {
	return &Handler{jobs: jobRepo, broadcaster: broadcaster}
}

// JobBody is the wire representation of a BackgroundJob.
type JobBody struct {
	ID            uuid.UUID      `json:"id"`
	Type          jobmodel.Type  `json:"type"`
	Status        jobmodel.Status `json:"status"`
	CollectionID  *uuid.UUID     `json:"collectionId,omitempty"`
	Progress      int            `json:"progress"`
	ResultMessage *string        `json:"resultMessage,omitempty"`
	ErrorMessage  *string        `json:"errorMessage,omitempty"`
}

func toJobBody(j *jobmodel.BackgroundJob) JobBody {
	return JobBody{
		ID:            j.ID(),
		Type:          j.JobType(),
		Status:        j.Status(),
		CollectionID:  j.CollectionID(),
		Progress:      j.Progress(),
		ResultMessage: j.ResultMessage(),
		ErrorMessage:  j.ErrorMessage(),
	}
}

// CreateJobInput enqueues one of the four background job types.
type CreateJobInput struct {
	Body struct {
		Type         jobmodel.Type `json:"type" enum:"ScanCollection,GenerateThumbnails,GenerateCache,CleanupCache"`
		CollectionID *uuid.UUID    `json:"collectionId,omitempty"`
	}
}

// CreateJobOutput is the newly-created Pending job.
type CreateJobOutput struct {
	Body JobBody
}

func (h *Handler) CreateJob(ctx context.Context, input *CreateJobInput) (*CreateJobOutput, error) {
	job, err := jobmodel.NewBackgroundJob(input.Body.Type, input.Body.CollectionID, nil)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid job request", err)
	}
	if err := h.jobs.Save(ctx, job); err != nil {
		return nil, huma.Error500InternalServerError("failed to enqueue job", err)
	}
	return &CreateJobOutput{Body: toJobBody(job)}, nil
}

// GetJobInput looks up a single job's current status.
type GetJobInput struct {
	ID uuid.UUID `path:"id"`
}

// GetJobOutput is the job's current state.
type GetJobOutput struct {
	Body JobBody
}

func (h *Handler) GetJob(ctx context.Context, input *GetJobInput) (*GetJobOutput, error) {
	job, err := h.jobs.FindByID(ctx, input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("job not found", err)
	}
	return &GetJobOutput{Body: toJobBody(job)}, nil
}

// RegisterRoutes registers the job-creation and job-status operations.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-job",
		Method:      http.MethodPost,
		Path:        "/jobs",
		Summary:     "Enqueue a background processing job",
		Tags:        []string{"Jobs"},
	}, h.CreateJob)

	huma.Register(api, huma.Operation{
		OperationID: "get-job",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}",
		Summary:     "Get a background job's current status",
		Tags:        []string{"Jobs"},
	}, h.GetJob)
}

// RegisterStreamRoute registers the raw SSE job-event stream on a chi
// router. Huma does not model streaming responses, so this bypasses it the
// same way the teacher's SSE handler does.
func (h *Handler) RegisterStreamRoute(r chi.Router) {
	if h.broadcaster == nil {
		return
	}
	r.Get("/jobs/events", h.broadcaster.ServeHTTP)
}
