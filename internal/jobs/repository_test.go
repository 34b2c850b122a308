package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/jobmodel"
)

func TestRepository_SaveAndFindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemoryStore())

	job, err := jobmodel.NewBackgroundJob(jobmodel.TypeScanCollection, nil, map[string]any{"foo": "bar"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, job))

	loaded, err := repo.FindByID(ctx, job.ID())
	require.NoError(t, err)
	assert.Equal(t, job.ID(), loaded.ID())
	assert.Equal(t, jobmodel.TypeScanCollection, loaded.JobType())
	assert.Equal(t, jobmodel.StatusPending, loaded.Status())
	assert.Equal(t, "bar", loaded.Payload()["foo"])
}

func TestRepository_ListPending_ExcludesOtherStatuses(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemoryStore())

	pending1, err := jobmodel.NewBackgroundJob(jobmodel.TypeScanCollection, nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, pending1))

	pending2, err := jobmodel.NewBackgroundJob(jobmodel.TypeGenerateCache, nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, pending2))

	running, err := jobmodel.NewBackgroundJob(jobmodel.TypeCleanupCache, nil, nil)
	require.NoError(t, err)
	require.NoError(t, running.Start())
	require.NoError(t, repo.Save(ctx, running))

	got, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	ids := []string{got[0].ID().String(), got[1].ID().String()}
	assert.Contains(t, ids, pending1.ID().String())
	assert.Contains(t, ids, pending2.ID().String())
}

func TestRepository_ListPending_RespectsLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemoryStore())

	for i := 0; i < 5; i++ {
		job, err := jobmodel.NewBackgroundJob(jobmodel.TypeScanCollection, nil, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, job))
	}

	got, err := repo.ListPending(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
