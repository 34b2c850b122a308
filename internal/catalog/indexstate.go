package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IndexVersion is bumped whenever the shape of the derived index records
// changes incompatibly, so a rebuild can distinguish stale state from
// merely out-of-date state.
const IndexVersion = 1

// CollectionIndexState is the per-collection bookkeeping record noting when
// a collection's summary/index entries were last written and from what
// source state.
type CollectionIndexState struct {
	CollectionID         uuid.UUID
	IndexedAt            time.Time
	CollectionUpdatedAt  time.Time
	ImageCount           int
	ThumbnailCount       int
	CacheCount           int
	HasFirstThumbnail    bool
	FirstThumbnailPath   *string
	IndexVersion         int
}

// NewIndexState builds the state record written immediately after a
// successful index write for the given collection. indexedAt is always
// set to the current time, preserving the indexedAt >= collectionUpdatedAt
// invariant as long as the caller passes a collection whose updatedAt does
// not lie in the future.
func NewIndexState(c *Collection) CollectionIndexState {
	var hasFirst bool
	var firstPath *string
	if thumbs := c.Thumbnails(); len(thumbs) > 0 {
		hasFirst = true
		firstPath = thumbs[0].ThumbnailPath
	}

	return CollectionIndexState{
		CollectionID:        c.ID(),
		IndexedAt:           time.Now(),
		CollectionUpdatedAt: c.UpdatedAt(),
		ImageCount:          len(c.Images()),
		ThumbnailCount:      len(c.Thumbnails()),
		CacheCount:          len(c.CacheImages()),
		HasFirstThumbnail:   hasFirst,
		FirstThumbnailPath:  firstPath,
		IndexVersion:        IndexVersion,
	}
}

// Validate enforces the state record's sole ordering invariant.
func (s CollectionIndexState) Validate() error {
	if s.IndexedAt.Before(s.CollectionUpdatedAt) {
		return fmt.Errorf("indexedAt (%s) must not precede collectionUpdatedAt (%s)", s.IndexedAt, s.CollectionUpdatedAt)
	}
	return nil
}

// IsStale reports whether the collection has been updated since this state
// was recorded, meaning a rebuild pass should revisit it.
func (s CollectionIndexState) IsStale(collectionUpdatedAt time.Time) bool {
	return collectionUpdatedAt.After(s.CollectionUpdatedAt)
}
