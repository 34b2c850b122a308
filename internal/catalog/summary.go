package catalog

import (
	"time"

	"github.com/google/uuid"
)

// CollectionSummary is the compact, denormalized projection of a Collection
// used for listing views. thumbnailBase64, when set, is a data: URL ready
// to render without a further fetch.
type CollectionSummary struct {
	ID              uuid.UUID
	Name            string
	FirstImageID    *uuid.UUID
	ImageCount      int
	ThumbnailCount  int
	CacheCount      int
	TotalSize       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LibraryID       *uuid.UUID
	Description     *string
	Type            Type
	Tags            []string
	Path            string
	ThumbnailBase64 *string
}

// BuildSummary projects a Collection into its listing summary. thumbnailB64
// is supplied by the caller (the index engine decides inlining policy and
// encodes the data URL); it is not derived here.
func BuildSummary(c *Collection, thumbnailB64 *string) CollectionSummary {
	var firstImageID *uuid.UUID
	if images := c.Images(); len(images) > 0 {
		id := images[0].ID
		firstImageID = &id
	}

	return CollectionSummary{
		ID:              c.ID(),
		Name:            c.Name(),
		FirstImageID:    firstImageID,
		ImageCount:      len(c.Images()),
		ThumbnailCount:  len(c.Thumbnails()),
		CacheCount:      len(c.CacheImages()),
		TotalSize:       c.Statistics().TotalSize,
		CreatedAt:       c.CreatedAt(),
		UpdatedAt:       c.UpdatedAt(),
		LibraryID:       c.LibraryID(),
		Description:     c.Description(),
		Type:            c.Type(),
		Tags:            c.Metadata().Tags,
		Path:            c.Path(),
		ThumbnailBase64: thumbnailB64,
	}
}
