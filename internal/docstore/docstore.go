// Package docstore abstracts the durable primary store the collection
// index engine treats as the single source of truth: Collection, Job,
// User, Library, CacheFolder, RefreshToken, SystemSetting documents, with
// idempotent secondary-index bootstrap at startup.
package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/collectionvault/index-engine/internal/shared"
)

// Collection names matching the predeclared indexes in the external
// interfaces contract.
const (
	CollCollections    = "collections"
	CollUsers          = "users"
	CollLibraries      = "libraries"
	CollCacheFolders   = "cache_folders"
	CollScheduledJobs  = "scheduled_jobs"
	CollBackgroundJobs = "background_jobs"
	CollRefreshTokens  = "refresh_tokens"
	CollSystemSettings = "system_settings"
)

// Sort describes a single-field sort direction for Find.
type Sort struct {
	Field string
	Desc  bool
}

// Store is the document-store adapter the index engine and job pipeline
// depend on for durable reads and writes.
type Store interface {
	// Count returns the number of documents matching filter.
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)

	// Find returns documents matching filter, sorted, paginated, decoded
	// into out (a pointer to a slice).
	Find(ctx context.Context, collection string, filter bson.M, sort Sort, skip, limit int64, out interface{}) error

	// FindByID decodes the document with the given id into out. Returns
	// shared.ErrNotFound if no document matches.
	FindByID(ctx context.Context, collection, id string, out interface{}) error

	// FindOne decodes the first document matching filter into out.
	FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error

	// Upsert replaces (or inserts) the document with the given id.
	Upsert(ctx context.Context, collection, id string, doc interface{}) error

	// UpdateByID applies a partial update ($set-style) to the document
	// with the given id.
	UpdateByID(ctx context.Context, collection, id string, update bson.M) error

	// EnsureIndexes creates, idempotently, every secondary index the
	// external interfaces contract predeclares.
	EnsureIndexes(ctx context.Context) error

	Ping(ctx context.Context) error
}

// MongoStore is the production Store backed by the official mongo-driver.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps an already-connected mongo.Database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// Connect dials MongoDB and returns a ready MongoStore.
func Connect(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return NewMongoStore(client.Database(database)), nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return n, nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter bson.M, sort Sort, skip, limit int64, out interface{}) error {
	opts := options.Find()
	if sort.Field != "" {
		dir := 1
		if sort.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sort.Field, Value: dir}})
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, collection, id string, out interface{}) error {
	return s.FindOne(ctx, collection, bson.M{"id": id}, out)
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *MongoStore) Upsert(ctx context.Context, collection, id string, doc interface{}) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"id": id}, doc, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	return nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, collection, id string, update bson.M) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientStore, err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// EnsureIndexes declares every secondary index named in the external
// interfaces contract. Index creation is idempotent: MongoDB accepts a
// CreateIndex call for an index that already exists with identical keys.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	type spec struct {
		collection string
		model      mongo.IndexModel
	}

	specs := []spec{
		{CollCollections, indexModel(bson.D{{Key: "libraryId", Value: 1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollCollections, indexModel(bson.D{{Key: "path", Value: 1}, {Key: "isDeleted", Value: 1}}, options.Index().SetUnique(true))},
		{CollCollections, indexModel(bson.D{{Key: "isActive", Value: 1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollCollections, indexModel(bson.D{{Key: "type", Value: 1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollCollections, indexModel(bson.D{
			{Key: "name", Value: "text"},
			{Key: "metadata.tags", Value: "text"},
			{Key: "searchIndex.keywords", Value: "text"},
			{Key: "description", Value: "text"},
		}, options.Index().SetWeights(bson.D{
			{Key: "name", Value: 10},
			{Key: "metadata.tags", Value: 5},
			{Key: "searchIndex.keywords", Value: 3},
			{Key: "description", Value: 1},
		}))},
		{CollCollections, indexModel(bson.D{{Key: "createdAt", Value: -1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollCollections, indexModel(bson.D{{Key: "updatedAt", Value: -1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollCollections, indexModel(bson.D{{Key: "images.path", Value: 1}}, options.Index().SetSparse(true))},
		{CollCollections, indexModel(bson.D{{Key: "cacheImages.cachePath", Value: 1}}, options.Index().SetSparse(true))},

		{CollUsers, indexModel(bson.D{{Key: "username", Value: 1}}, options.Index().SetUnique(true))},
		{CollUsers, indexModel(bson.D{{Key: "email", Value: 1}}, options.Index().SetUnique(true))},
		{CollUsers, indexModel(bson.D{{Key: "isActive", Value: 1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollUsers, indexModel(bson.D{{Key: "role", Value: 1}, {Key: "isActive", Value: 1}}, nil)},

		{CollLibraries, indexModel(bson.D{{Key: "ownerId", Value: 1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollLibraries, indexModel(bson.D{{Key: "path", Value: 1}, {Key: "isDeleted", Value: 1}}, options.Index().SetUnique(true))},
		{CollLibraries, indexModel(bson.D{{Key: "isActive", Value: 1}, {Key: "isDeleted", Value: 1}}, nil)},
		{CollLibraries, indexModel(bson.D{{Key: "isPublic", Value: 1}, {Key: "isActive", Value: 1}, {Key: "isDeleted", Value: 1}}, nil)},

		{CollCacheFolders, indexModel(bson.D{{Key: "path", Value: 1}}, options.Index().SetUnique(true))},
		{CollCacheFolders, indexModel(bson.D{{Key: "isActive", Value: 1}, {Key: "priority", Value: 1}}, nil)},
		{CollCacheFolders, indexModel(bson.D{{Key: "cachedCollectionIds", Value: 1}}, options.Index().SetSparse(true))},

		{CollScheduledJobs, indexModel(bson.D{{Key: "jobType", Value: 1}, {Key: "isEnabled", Value: 1}}, nil)},
		{CollScheduledJobs, indexModel(bson.D{{Key: "libraryId", Value: 1}, {Key: "isEnabled", Value: 1}}, options.Index().SetSparse(true))},
		{CollScheduledJobs, indexModel(bson.D{{Key: "nextRunAt", Value: 1}, {Key: "isEnabled", Value: 1}}, options.Index().SetSparse(true))},
		{CollScheduledJobs, indexModel(bson.D{{Key: "hangfireJobId", Value: 1}}, options.Index().SetSparse(true))},

		{CollBackgroundJobs, indexModel(bson.D{{Key: "status", Value: 1}, {Key: "jobType", Value: 1}}, nil)},
		{CollBackgroundJobs, indexModel(bson.D{{Key: "createdAt", Value: -1}}, nil)},
		{CollBackgroundJobs, indexModel(bson.D{{Key: "startedAt", Value: -1}}, options.Index().SetSparse(true))},

		{CollRefreshTokens, indexModel(bson.D{{Key: "token", Value: 1}}, options.Index().SetUnique(true))},
		{CollRefreshTokens, indexModel(bson.D{{Key: "userId", Value: 1}, {Key: "expiresAt", Value: 1}}, nil)},
		{CollRefreshTokens, indexModel(bson.D{{Key: "expiresAt", Value: 1}}, options.Index().SetExpireAfterSeconds(0))},

		{CollSystemSettings, indexModel(bson.D{{Key: "settingKey", Value: 1}}, options.Index().SetUnique(true))},
		{CollSystemSettings, indexModel(bson.D{{Key: "category", Value: 1}}, nil)},
	}

	byCollection := map[string][]mongo.IndexModel{}
	for _, sp := range specs {
		byCollection[sp.collection] = append(byCollection[sp.collection], sp.model)
	}

	for collection, models := range byCollection {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%w: ensure indexes on %s: %v", shared.ErrTransientStore, collection, err)
		}
	}
	return nil
}

func indexModel(keys bson.D, opts *options.IndexOptions) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: opts}
}
