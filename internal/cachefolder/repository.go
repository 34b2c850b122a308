package cachefolder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/collectionvault/index-engine/internal/docstore"
)

// document is the persisted shape of a CacheFolder.
type document struct {
	ID                  uuid.UUID   `bson:"id" json:"id"`
	Name                string      `bson:"name" json:"name"`
	Path                string      `bson:"path" json:"path"`
	CurrentSizeBytes    int64       `bson:"currentSizeBytes" json:"currentSizeBytes"`
	MaxSizeBytes        int64       `bson:"maxSizeBytes" json:"maxSizeBytes"`
	TotalFiles          int         `bson:"totalFiles" json:"totalFiles"`
	CachedCollectionIDs []uuid.UUID `bson:"cachedCollectionIds,omitempty" json:"cachedCollectionIds,omitempty"`
	IsActive            bool        `bson:"isActive" json:"isActive"`
	Priority            int         `bson:"priority" json:"priority"`
	CreatedAt           time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time   `bson:"updatedAt" json:"updatedAt"`
}

func toDocument(f *CacheFolder) document {
	return document{
		ID:                  f.ID(),
		Name:                f.Name(),
		Path:                f.Path(),
		CurrentSizeBytes:    f.CurrentSizeBytes(),
		MaxSizeBytes:        f.MaxSizeBytes(),
		TotalFiles:          f.TotalFiles(),
		CachedCollectionIDs: f.CachedCollectionIDs(),
		IsActive:            f.IsActive(),
		Priority:            f.Priority(),
		CreatedAt:           f.CreatedAt(),
		UpdatedAt:           f.UpdatedAt(),
	}
}

func fromDocument(d document) *CacheFolder {
	return Reconstruct(
		d.ID, d.Name, d.Path, d.CurrentSizeBytes, d.MaxSizeBytes, d.TotalFiles,
		d.CachedCollectionIDs, d.IsActive, d.Priority, d.CreatedAt, d.UpdatedAt,
	)
}

// Repository persists CacheFolders, the disk locations the cleanup and
// cache-generation job handlers read and write against.
type Repository struct {
	store docstore.Store
}

// NewRepository wraps a document store for CacheFolder persistence.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Save upserts a cache folder by id.
func (r *Repository) Save(ctx context.Context, f *CacheFolder) error {
	return r.store.Upsert(ctx, docstore.CollCacheFolders, f.ID().String(), toDocument(f))
}

// FindByID loads a single cache folder by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*CacheFolder, error) {
	var d document
	if err := r.store.FindByID(ctx, docstore.CollCacheFolders, id.String(), &d); err != nil {
		return nil, err
	}
	return fromDocument(d), nil
}

// ListActive returns every active cache folder, highest priority first.
func (r *Repository) ListActive(ctx context.Context) ([]*CacheFolder, error) {
	var docs []document
	filter := bson.M{"isActive": true}
	sort := docstore.Sort{Field: "priority", Desc: true}
	if err := r.store.Find(ctx, docstore.CollCacheFolders, filter, sort, 0, 0, &docs); err != nil {
		return nil, err
	}
	out := make([]*CacheFolder, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

// ListAll returns every cache folder regardless of active state.
func (r *Repository) ListAll(ctx context.Context) ([]*CacheFolder, error) {
	var docs []document
	if err := r.store.Find(ctx, docstore.CollCacheFolders, bson.M{}, docstore.Sort{}, 0, 0, &docs); err != nil {
		return nil, err
	}
	out := make([]*CacheFolder, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}
