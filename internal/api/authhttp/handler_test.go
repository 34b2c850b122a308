package authhttp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/auth"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/shared/jwt"
)

func newTestHandler() *Handler {
	svc := auth.NewService(docstore.NewMemoryStore(), jwt.NewService("test-secret", 1))
	return NewHandler(svc)
}

func registerInput(username, email, password string) *RegisterInput {
	in := &RegisterInput{}
	in.Body.Username = username
	in.Body.Email = email
	in.Body.Password = password
	return in
}

func TestHandler_Register_IssuesASession(t *testing.T) {
	h := newTestHandler()

	out, err := h.Register(context.Background(), registerInput("alice", "alice@example.com", "correct-horse-battery"))

	require.NoError(t, err)
	assert.NotEmpty(t, out.Body.AccessToken)
	assert.Equal(t, "alice", out.Body.Username)
}

func TestHandler_Register_RejectsWeakPassword(t *testing.T) {
	h := newTestHandler()

	_, err := h.Register(context.Background(), registerInput("alice", "alice@example.com", "short"))

	assert.Error(t, err)
}

func TestHandler_Login_SucceedsWithCorrectCredentials(t *testing.T) {
	h := newTestHandler()
	_, err := h.Register(context.Background(), registerInput("alice", "alice@example.com", "correct-horse-battery"))
	require.NoError(t, err)

	loginInput := &LoginInput{}
	loginInput.Body.Username = "alice"
	loginInput.Body.Password = "correct-horse-battery"

	out, err := h.Login(context.Background(), loginInput)

	require.NoError(t, err)
	assert.NotEmpty(t, out.Body.AccessToken)
}

func TestHandler_Login_RejectsWrongPassword(t *testing.T) {
	h := newTestHandler()
	_, err := h.Register(context.Background(), registerInput("alice", "alice@example.com", "correct-horse-battery"))
	require.NoError(t, err)

	loginInput := &LoginInput{}
	loginInput.Body.Username = "alice"
	loginInput.Body.Password = "wrong-password"

	_, err = h.Login(context.Background(), loginInput)

	assert.Error(t, err)
}

func TestHandler_Refresh_RotatesTheSession(t *testing.T) {
	h := newTestHandler()
	session, err := h.Register(context.Background(), registerInput("alice", "alice@example.com", "correct-horse-battery"))
	require.NoError(t, err)

	refreshInput := &RefreshInput{}
	refreshInput.Body.RefreshToken = session.Body.RefreshToken

	out, err := h.Refresh(context.Background(), refreshInput)

	require.NoError(t, err)
	assert.NotEqual(t, session.Body.RefreshToken, out.Body.RefreshToken)
}

func TestHandler_Refresh_RejectsAnUnknownToken(t *testing.T) {
	h := newTestHandler()

	refreshInput := &RefreshInput{}
	refreshInput.Body.RefreshToken = "not-a-real-token"

	_, err := h.Refresh(context.Background(), refreshInput)

	assert.Error(t, err)
}

func TestHandler_Logout_RevokesTheRefreshToken(t *testing.T) {
	h := newTestHandler()
	session, err := h.Register(context.Background(), registerInput("alice", "alice@example.com", "correct-horse-battery"))
	require.NoError(t, err)

	logoutInput := &LogoutInput{}
	logoutInput.Body.RefreshToken = session.Body.RefreshToken

	_, err = h.Logout(context.Background(), logoutInput)
	require.NoError(t, err)

	refreshInput := &RefreshInput{}
	refreshInput.Body.RefreshToken = session.Body.RefreshToken
	_, err = h.Refresh(context.Background(), refreshInput)
	assert.Error(t, err)
}

func TestHandler_Logout_NeverErrorsEvenForAnUnknownToken(t *testing.T) {
	h := newTestHandler()

	logoutInput := &LogoutInput{}
	logoutInput.Body.RefreshToken = "not-a-real-token"

	_, err := h.Logout(context.Background(), logoutInput)

	assert.NoError(t, err)
}
