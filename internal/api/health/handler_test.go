package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/kvs"
)

func newTestHandler(t *testing.T) (*Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHandler(docstore.NewMemoryStore(), kvs.NewRedisStore(client)), mr
}

func TestHealth_AllDependenciesHealthy(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp, err := handler.Health(context.Background(), &HealthInput{})

	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Body.Status)
	assert.Equal(t, "healthy", resp.Body.Checks["docstore"])
	assert.Equal(t, "healthy", resp.Body.Checks["kvs"])
}

func TestHealth_DegradesWhenKVSIsUnreachable(t *testing.T) {
	handler, mr := newTestHandler(t)
	mr.Close()

	resp, err := handler.Health(context.Background(), &HealthInput{})

	require.NoError(t, err)
	assert.Equal(t, "degraded", resp.Body.Status)
	assert.Equal(t, "unhealthy", resp.Body.Checks["kvs"])
	assert.Equal(t, "healthy", resp.Body.Checks["docstore"])
}

func TestHealth_VersionField(t *testing.T) {
	handler, _ := newTestHandler(t)

	original := Version
	defer func() { Version = original }()
	Version = "1.2.3-test"

	resp, err := handler.Health(context.Background(), &HealthInput{})

	require.NoError(t, err)
	assert.Equal(t, "1.2.3-test", resp.Body.Version)
}
