package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/collectionvault/index-engine/internal/docstore"
)

// document is the persisted shape of a Collection. bson tags drive the
// production mongo-driver path; json tags (identical names) drive the
// in-memory test double, which round-trips documents through JSON.
type document struct {
	ID          uuid.UUID           `bson:"id" json:"id"`
	LibraryID   *uuid.UUID          `bson:"libraryId,omitempty" json:"libraryId,omitempty"`
	Name        string              `bson:"name" json:"name"`
	Description *string             `bson:"description,omitempty" json:"description,omitempty"`
	Path        string              `bson:"path" json:"path"`
	Type        Type                `bson:"type" json:"type"`
	IsActive    bool                `bson:"isActive" json:"isActive"`
	IsDeleted   bool                `bson:"isDeleted" json:"isDeleted"`
	Statistics  Statistics          `bson:"statistics" json:"statistics"`
	Metadata    Metadata            `bson:"metadata" json:"metadata"`
	SearchIndex SearchIndex         `bson:"searchIndex" json:"searchIndex"`
	Images      []ImageEntry        `bson:"images" json:"images"`
	Thumbnails  []ThumbnailEmbedded `bson:"thumbnails" json:"thumbnails"`
	CacheImages []CacheImage        `bson:"cacheImages" json:"cacheImages"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func toDocument(c *Collection) document {
	return document{
		ID:          c.ID(),
		LibraryID:   c.LibraryID(),
		Name:        c.Name(),
		Description: c.Description(),
		Path:        c.Path(),
		Type:        c.Type(),
		IsActive:    c.IsActive(),
		IsDeleted:   c.IsDeleted(),
		Statistics:  c.Statistics(),
		Metadata:    c.Metadata(),
		SearchIndex: c.SearchIndex(),
		Images:      c.Images(),
		Thumbnails:  c.Thumbnails(),
		CacheImages: c.CacheImages(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

func fromDocument(d document) *Collection {
	return Reconstruct(
		d.ID, d.LibraryID, d.Name, d.Description, d.Path, d.Type,
		d.IsActive, d.IsDeleted, d.Statistics, d.Metadata, d.SearchIndex,
		d.Images, d.Thumbnails, d.CacheImages, d.CreatedAt, d.UpdatedAt,
	)
}

// Repository persists Collections in the document store, converting to and
// from the aggregate's private-field shape at the boundary.
type Repository struct {
	store docstore.Store
}

// NewRepository wraps a document store for Collection persistence.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Save upserts a collection by id.
func (r *Repository) Save(ctx context.Context, c *Collection) error {
	return r.store.Upsert(ctx, docstore.CollCollections, c.ID().String(), toDocument(c))
}

// FindByID loads a single non-deleted-or-not collection by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Collection, error) {
	var d document
	if err := r.store.FindByID(ctx, docstore.CollCollections, id.String(), &d); err != nil {
		return nil, err
	}
	return fromDocument(d), nil
}

// ListAll returns every non-deleted collection, sorted by id, for use by a
// Full/ChangedOnly/ForceRebuildAll rebuild pass. skip/limit page through
// the full set in the rebuild's batch=100 convention.
func (r *Repository) ListAll(ctx context.Context, skip, limit int64) ([]*Collection, error) {
	var docs []document
	sort := docstore.Sort{Field: "id", Desc: false}
	if err := r.store.Find(ctx, docstore.CollCollections, bson.M{"isDeleted": false}, sort, skip, limit, &docs); err != nil {
		return nil, err
	}
	out := make([]*Collection, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

// Count reports the number of non-deleted collections.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, docstore.CollCollections, bson.M{"isDeleted": false})
}

// FindByLibrary returns every non-deleted collection belonging to libraryID.
func (r *Repository) FindByLibrary(ctx context.Context, libraryID uuid.UUID) ([]*Collection, error) {
	var docs []document
	filter := bson.M{"libraryId": libraryID.String(), "isDeleted": false}
	if err := r.store.Find(ctx, docstore.CollCollections, filter, docstore.Sort{}, 0, 0, &docs); err != nil {
		return nil, err
	}
	out := make([]*Collection, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

// Search does a simple case-insensitive substring scan over name and
// path. The production MongoStore may instead be driven by its $text index
// (see EnsureIndexes); this method is the portable fallback the in-memory
// store and any backend without text-index support can rely on.
func (r *Repository) Search(ctx context.Context, query string) ([]*Collection, error) {
	var docs []document
	if err := r.store.Find(ctx, docstore.CollCollections, bson.M{"isDeleted": false}, docstore.Sort{}, 0, 0, &docs); err != nil {
		return nil, err
	}
	out := make([]*Collection, 0)
	needle := strings.ToLower(query)
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Name), needle) || strings.Contains(strings.ToLower(d.Path), needle) {
			out = append(out, fromDocument(d))
		}
	}
	return out, nil
}
