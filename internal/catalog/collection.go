// Package catalog defines the Collection aggregate and its embedded value
// types: the logical group of images that the index engine and background
// pipeline operate on.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/shared"
)

// Type distinguishes a folder-backed collection from an archive-backed one.
type Type string

const (
	TypeFolder  Type = "Folder"
	TypeArchive Type = "Archive"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeFolder, TypeArchive:
		return true
	default:
		return false
	}
}

// Statistics holds the view/size counters tracked on a Collection.
type Statistics struct {
	TotalItems  int
	TotalSize   int64
	TotalViews  int64
	LastViewed  *time.Time
}

// Metadata carries freeform tags used for filtering and full-text search.
type Metadata struct {
	Tags []string
}

// SearchIndex carries the derived keyword list backing the text index.
type SearchIndex struct {
	Keywords []string
}

// Collection is the aggregate root: a folder or archive of images, with its
// statistics, embedded image/thumbnail/cache-image records, and metadata.
type Collection struct {
	id          uuid.UUID
	libraryID   *uuid.UUID
	name        string
	description *string
	path        string
	typ         Type
	isActive    bool
	isDeleted   bool
	statistics  Statistics
	metadata    Metadata
	searchIndex SearchIndex
	images      []ImageEntry
	thumbnails  []ThumbnailEmbedded
	cacheImages []CacheImage
	createdAt   time.Time
	updatedAt   time.Time
}

// NewCollection creates a new, active, non-deleted collection.
func NewCollection(libraryID *uuid.UUID, name, path string, typ Type) (*Collection, error) {
	if name == "" {
		return nil, shared.NewFieldError(shared.ErrInvalidInput, "name", "collection name is required")
	}
	if path == "" {
		return nil, shared.NewFieldError(shared.ErrInvalidInput, "path", "collection path is required")
	}
	if !typ.IsValid() {
		return nil, shared.NewFieldError(shared.ErrInvalidInput, "type", "collection type must be Folder or Archive")
	}

	now := time.Now()
	return &Collection{
		id:        shared.NewUUID(),
		libraryID: libraryID,
		name:      name,
		path:      path,
		typ:       typ,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Collection from persisted fields, bypassing the
// constructor's defaults. Used by the document store adapter when loading
// existing records.
func Reconstruct(
	id uuid.UUID,
	libraryID *uuid.UUID,
	name string,
	description *string,
	path string,
	typ Type,
	isActive, isDeleted bool,
	statistics Statistics,
	metadata Metadata,
	searchIndex SearchIndex,
	images []ImageEntry,
	thumbnails []ThumbnailEmbedded,
	cacheImages []CacheImage,
	createdAt, updatedAt time.Time,
) *Collection {
	return &Collection{
		id:          id,
		libraryID:   libraryID,
		name:        name,
		description: description,
		path:        path,
		typ:         typ,
		isActive:    isActive,
		isDeleted:   isDeleted,
		statistics:  statistics,
		metadata:    metadata,
		searchIndex: searchIndex,
		images:      images,
		thumbnails:  thumbnails,
		cacheImages: cacheImages,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (c *Collection) ID() uuid.UUID                  { return c.id }
func (c *Collection) LibraryID() *uuid.UUID          { return c.libraryID }
func (c *Collection) Name() string                   { return c.name }
func (c *Collection) Description() *string           { return c.description }
func (c *Collection) Path() string                   { return c.path }
func (c *Collection) Type() Type                     { return c.typ }
func (c *Collection) IsActive() bool                 { return c.isActive }
func (c *Collection) IsDeleted() bool                { return c.isDeleted }
func (c *Collection) Statistics() Statistics         { return c.statistics }
func (c *Collection) Metadata() Metadata             { return c.metadata }
func (c *Collection) SearchIndex() SearchIndex       { return c.searchIndex }
func (c *Collection) Images() []ImageEntry           { return c.images }
func (c *Collection) Thumbnails() []ThumbnailEmbedded { return c.thumbnails }
func (c *Collection) CacheImages() []CacheImage      { return c.cacheImages }
func (c *Collection) CreatedAt() time.Time           { return c.createdAt }
func (c *Collection) UpdatedAt() time.Time           { return c.updatedAt }

// Rename changes the display name and bumps updatedAt.
func (c *Collection) Rename(name string) error {
	if name == "" {
		return shared.NewFieldError(shared.ErrInvalidInput, "name", "collection name is required")
	}
	c.name = name
	c.touch()
	return nil
}

// SetDescription replaces the description, which may be nil.
func (c *Collection) SetDescription(description *string) {
	c.description = description
	c.touch()
}

// SetTags replaces the metadata tag list.
func (c *Collection) SetTags(tags []string) {
	c.metadata.Tags = tags
	c.touch()
}

// SetKeywords replaces the derived search-index keyword list.
func (c *Collection) SetKeywords(keywords []string) {
	c.searchIndex.Keywords = keywords
	c.touch()
}

// SetImages replaces the image entry list and recomputes totalItems.
func (c *Collection) SetImages(images []ImageEntry) {
	c.images = images
	c.statistics.TotalItems = len(images)
	var total int64
	for _, img := range images {
		total += img.FileSize
	}
	c.statistics.TotalSize = total
	c.touch()
}

// SetThumbnails replaces the embedded thumbnail list.
func (c *Collection) SetThumbnails(thumbnails []ThumbnailEmbedded) {
	c.thumbnails = thumbnails
	c.touch()
}

// SetCacheImages replaces the embedded cache-image list.
func (c *Collection) SetCacheImages(cacheImages []CacheImage) {
	c.cacheImages = cacheImages
	c.touch()
}

// RecordView increments the view counter and stamps lastViewed.
func (c *Collection) RecordView() {
	now := time.Now()
	c.statistics.TotalViews++
	c.statistics.LastViewed = &now
	c.touch()
}

// MarkDeleted performs the logical delete: isDeleted=true, history preserved.
func (c *Collection) MarkDeleted() {
	c.isDeleted = true
	c.touch()
}

// Restore clears the logical delete flag.
func (c *Collection) Restore() {
	c.isDeleted = false
	c.touch()
}

// SetActive toggles the active flag independently of deletion.
func (c *Collection) SetActive(active bool) {
	c.isActive = active
	c.touch()
}

func (c *Collection) touch() {
	c.updatedAt = time.Now()
}
