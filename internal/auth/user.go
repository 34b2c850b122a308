package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/shared"
)

// User is a credentialed principal of the API façade.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type userDocument struct {
	ID           uuid.UUID `bson:"id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"passwordHash"`
	Role         string    `bson:"role" json:"role"`
	IsActive     bool      `bson:"isActive" json:"isActive"`
	IsDeleted    bool      `bson:"isDeleted" json:"isDeleted"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func toUserDocument(u User) userDocument {
	return userDocument{
		ID: u.ID, Username: u.Username, Email: u.Email, PasswordHash: u.PasswordHash,
		Role: u.Role, IsActive: u.IsActive, IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func fromUserDocument(d userDocument) User {
	return User{
		ID: d.ID, Username: d.Username, Email: d.Email, PasswordHash: d.PasswordHash,
		Role: d.Role, IsActive: d.IsActive, IsDeleted: d.IsDeleted,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

// UserRepository persists User records in the document store.
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository wraps a document store for User persistence.
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Save(ctx context.Context, u User) error {
	return r.store.Upsert(ctx, docstore.CollUsers, u.ID.String(), toUserDocument(u))
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	var d userDocument
	if err := r.store.FindByID(ctx, docstore.CollUsers, id.String(), &d); err != nil {
		return User{}, err
	}
	return fromUserDocument(d), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	var d userDocument
	if err := r.store.FindOne(ctx, docstore.CollUsers, bson.M{"username": username, "isDeleted": false}, &d); err != nil {
		return User{}, err
	}
	return fromUserDocument(d), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	var d userDocument
	if err := r.store.FindOne(ctx, docstore.CollUsers, bson.M{"email": email, "isDeleted": false}, &d); err != nil {
		return User{}, err
	}
	return fromUserDocument(d), nil
}

// NewUser builds a new active User with a hashed password.
func NewUser(username, email, password, role string) (User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	if username == "" || email == "" {
		return User{}, shared.NewFieldError(shared.ErrInvalidInput, "username", "username and email are required")
	}
	now := time.Now()
	return User{
		ID: shared.NewUUID(), Username: username, Email: email, PasswordHash: hash,
		Role: role, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}, nil
}
