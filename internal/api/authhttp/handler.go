// Package authhttp exposes the credentials subsystem's register/login/
// refresh/logout flow over HTTP, outside the index engine and job
// pipeline's core.
package authhttp

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/collectionvault/index-engine/internal/auth"
)

// Handler adapts auth.Service to HTTP operations.
type Handler struct {
	svc *auth.Service
}

// NewHandler wraps a credentials service for the auth façade.
func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// SessionBody is the wire representation of an issued session.
type SessionBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

func toSessionBody(s auth.Session) SessionBody {
	return SessionBody{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Username:     s.User.Username,
		Email:        s.User.Email,
		Role:         s.User.Role,
	}
}

// RegisterInput is a new-account request.
type RegisterInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" maxLength:"64"`
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"8" maxLength:"128"`
	}
}

// RegisterOutput is the freshly-issued session.
type RegisterOutput struct {
	Body SessionBody
}

func (h *Handler) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	session, err := h.svc.Register(ctx, input.Body.Username, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("registration failed", err)
	}
	return &RegisterOutput{Body: toSessionBody(session)}, nil
}

// LoginInput is a username/password credential pair.
type LoginInput struct {
	Body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
}

// LoginOutput is the freshly-issued session.
type LoginOutput struct {
	Body SessionBody
}

func (h *Handler) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	session, err := h.svc.Login(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid credentials", err)
	}
	return &LoginOutput{Body: toSessionBody(session)}, nil
}

// RefreshInput carries the opaque refresh token to exchange.
type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refreshToken"`
	}
}

// RefreshOutput is the rotated session.
type RefreshOutput struct {
	Body SessionBody
}

func (h *Handler) Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
	session, err := h.svc.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, huma.Error401Unauthorized("refresh token is invalid or expired", err)
	}
	return &RefreshOutput{Body: toSessionBody(session)}, nil
}

// LogoutInput carries the refresh token to revoke.
type LogoutInput struct {
	Body struct {
		RefreshToken string `json:"refreshToken"`
	}
}

// LogoutOutput is empty; logout always succeeds idempotently.
type LogoutOutput struct{}

func (h *Handler) Logout(ctx context.Context, input *LogoutInput) (*LogoutOutput, error) {
	_ = h.svc.Logout(ctx, input.Body.RefreshToken)
	return &LogoutOutput{}, nil
}

// RegisterRoutes registers the public auth operations.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "auth-register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Create a new account",
		Tags:        []string{"Auth"},
	}, h.Register)

	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Exchange credentials for a session",
		Tags:        []string{"Auth"},
	}, h.Login)

	huma.Register(api, huma.Operation{
		OperationID: "auth-refresh",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Rotate a refresh token for a new session",
		Tags:        []string{"Auth"},
	}, h.Refresh)

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Revoke a refresh token",
		Tags:        []string{"Auth"},
	}, h.Logout)
}
