package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/docstore"
)

func TestRefreshTokenRepository_IssueAndResolve(t *testing.T) {
	ctx := context.Background()
	repo := NewRefreshTokenRepository(docstore.NewMemoryStore())
	userID := uuid.New()

	token, err := repo.Issue(ctx, userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	resolved, err := repo.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestRefreshTokenRepository_Resolve_RejectsUnknownToken(t *testing.T) {
	ctx := context.Background()
	repo := NewRefreshTokenRepository(docstore.NewMemoryStore())

	_, err := repo.Resolve(ctx, "not-a-real-token")
	assert.Error(t, err)
}

func TestRefreshTokenRepository_Revoke_InvalidatesToken(t *testing.T) {
	ctx := context.Background()
	repo := NewRefreshTokenRepository(docstore.NewMemoryStore())
	userID := uuid.New()

	token, err := repo.Issue(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, repo.Revoke(ctx, token))

	_, err = repo.Resolve(ctx, token)
	assert.Error(t, err)
}

func TestGenerateOpaqueToken_ProducesDistinctTokens(t *testing.T) {
	a, err := generateOpaqueToken()
	require.NoError(t, err)
	b, err := generateOpaqueToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashToken_IsDeterministic(t *testing.T) {
	assert.Equal(t, hashToken("same-input"), hashToken("same-input"))
	assert.NotEqual(t, hashToken("input-a"), hashToken("input-b"))
}
