package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/shared"
)

const refreshTokenTTL = 7 * 24 * time.Hour

// generateOpaqueToken returns 32 random bytes, base64-encoded, per the
// refresh-token wire format.
func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type refreshTokenDocument struct {
	ID        uuid.UUID `bson:"id" json:"id"`
	UserID    uuid.UUID `bson:"userId" json:"userId"`
	TokenHash string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// RefreshTokenRepository persists the hashed, revocable refresh tokens
// issued by Service.Login.
type RefreshTokenRepository struct {
	store docstore.Store
}

func NewRefreshTokenRepository(store docstore.Store) *RefreshTokenRepository {
	return &RefreshTokenRepository{store: store}
}

// Issue generates and persists a new opaque refresh token for userID,
// returning the plaintext token (never stored).
func (r *RefreshTokenRepository) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	plaintext, err := generateOpaqueToken()
	if err != nil {
		return "", err
	}
	doc := refreshTokenDocument{
		ID:        shared.NewUUID(),
		UserID:    userID,
		TokenHash: hashToken(plaintext),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := r.store.Upsert(ctx, docstore.CollRefreshTokens, doc.ID.String(), doc); err != nil {
		return "", err
	}
	return plaintext, nil
}

// Resolve looks up the user a (still valid) plaintext refresh token was
// issued for.
func (r *RefreshTokenRepository) Resolve(ctx context.Context, plaintext string) (uuid.UUID, error) {
	var d refreshTokenDocument
	filter := bson.M{"token": hashToken(plaintext)}
	if err := r.store.FindOne(ctx, docstore.CollRefreshTokens, filter, &d); err != nil {
		return uuid.Nil, err
	}
	if time.Now().After(d.ExpiresAt) {
		return uuid.Nil, shared.NewDomainError(shared.ErrUnauthorized, "refresh token has expired")
	}
	return d.UserID, nil
}

// Revoke invalidates a refresh token immediately rather than waiting for
// its TTL to expire, by overwriting it with an already-expired copy.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, plaintext string) error {
	var d refreshTokenDocument
	filter := bson.M{"token": hashToken(plaintext)}
	if err := r.store.FindOne(ctx, docstore.CollRefreshTokens, filter, &d); err != nil {
		return err
	}
	d.ExpiresAt = time.Now().Add(-time.Second)
	return r.store.Upsert(ctx, docstore.CollRefreshTokens, d.ID.String(), d)
}
