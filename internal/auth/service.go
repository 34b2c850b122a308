package auth

import (
	"context"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/shared"
	"github.com/collectionvault/index-engine/internal/shared/jwt"
)

// Session is the pair of tokens returned by Register/Login/Refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// Service implements the credentials subsystem's login/refresh flow: bcrypt
// password verification, HMAC-SHA-256 access tokens via jwt.Service, and
// persisted opaque refresh tokens.
type Service struct {
	users   *UserRepository
	tokens  *RefreshTokenRepository
	jwtSvc  *jwt.Service
}

// NewService wires the credentials subsystem against store for User and
// RefreshToken persistence, issuing access tokens with jwtSvc.
func NewService(store docstore.Store, jwtSvc *jwt.Service) *Service {
	return &Service{
		users:  NewUserRepository(store),
		tokens: NewRefreshTokenRepository(store),
		jwtSvc: jwtSvc,
	}
}

// Register creates a new user with role "user" and immediately issues a
// session for it.
func (s *Service) Register(ctx context.Context, username, email, password string) (Session, error) {
	u, err := NewUser(username, email, password, "user")
	if err != nil {
		return Session{}, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, u)
}

// Login verifies username/password and issues a fresh session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return Session{}, shared.NewDomainError(shared.ErrUnauthorized, "invalid credentials")
	}
	if !u.IsActive {
		return Session{}, shared.NewDomainError(shared.ErrUnauthorized, "account is disabled")
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return Session{}, shared.NewDomainError(shared.ErrUnauthorized, "invalid credentials")
	}
	return s.issueSession(ctx, u)
}

// Refresh exchanges a still-valid opaque refresh token for a new session,
// rotating the refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	userID, err := s.tokens.Resolve(ctx, refreshToken)
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	if !u.IsActive {
		return Session{}, shared.NewDomainError(shared.ErrUnauthorized, "account is disabled")
	}
	_ = s.tokens.Revoke(ctx, refreshToken)
	return s.issueSession(ctx, u)
}

// Logout revokes a refresh token so it can no longer be exchanged.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *Service) issueSession(ctx context.Context, u User) (Session, error) {
	access, err := s.jwtSvc.GenerateToken(u.ID, u.Email, u.Username, u.Role)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: access, RefreshToken: refresh, User: u}, nil
}
