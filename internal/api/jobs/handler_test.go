package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/jobmodel"
	pipeline "github.com/collectionvault/index-engine/internal/jobs"
)

func newTestHandler() (*Handler, *pipeline.Repository) {
	repo := pipeline.NewRepository(docstore.NewMemoryStore())
	return NewHandler(repo, nil), repo
}

func TestHandler_CreateJob_EnqueuesAPendingJob(t *testing.T) {
	h, repo := newTestHandler()

	out, err := h.CreateJob(context.Background(), &CreateJobInput{Body: struct {
		Type         jobmodel.Type `json:"type" enum:"ScanCollection,GenerateThumbnails,GenerateCache,CleanupCache"`
		CollectionID *uuid.UUID    `json:"collectionId,omitempty"`
	}{Type: jobmodel.TypeScanCollection}})

	require.NoError(t, err)
	assert.Equal(t, jobmodel.TypeScanCollection, out.Body.Type)
	assert.Equal(t, jobmodel.StatusPending, out.Body.Status)

	stored, err := repo.FindByID(context.Background(), out.Body.ID)
	require.NoError(t, err)
	assert.Equal(t, jobmodel.StatusPending, stored.Status())
}

func TestHandler_CreateJob_RejectsUnknownJobType(t *testing.T) {
	h, _ := newTestHandler()

	_, err := h.CreateJob(context.Background(), &CreateJobInput{Body: struct {
		Type         jobmodel.Type `json:"type" enum:"ScanCollection,GenerateThumbnails,GenerateCache,CleanupCache"`
		CollectionID *uuid.UUID    `json:"collectionId,omitempty"`
	}{Type: jobmodel.Type("NotAJobType")}})

	assert.Error(t, err)
}

func TestHandler_GetJob_ReturnsTheStoredJob(t *testing.T) {
	h, repo := newTestHandler()
	job, err := jobmodel.NewBackgroundJob(jobmodel.TypeCleanupCache, nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), job))

	out, err := h.GetJob(context.Background(), &GetJobInput{ID: job.ID()})

	require.NoError(t, err)
	assert.Equal(t, job.ID(), out.Body.ID)
	assert.Equal(t, jobmodel.TypeCleanupCache, out.Body.Type)
}

func TestHandler_GetJob_ReturnsNotFoundForUnknownID(t *testing.T) {
	h, _ := newTestHandler()

	_, err := h.GetJob(context.Background(), &GetJobInput{ID: uuid.New()})

	assert.Error(t, err)
}

func TestHandler_RegisterStreamRoute_NoopWithoutBroadcaster(t *testing.T) {
	h, _ := newTestHandler()

	assert.NotPanics(t, func() {
		h.RegisterStreamRoute(nil)
	})
}
