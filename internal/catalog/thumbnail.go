package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ThumbnailEmbedded is a pre-rendered thumbnail record attached to a
// Collection. IsDirect=true means thumbnailPath points at the original
// image rather than a generated, smaller file.
type ThumbnailEmbedded struct {
	ThumbnailPath *string
	Width         int
	Height        int
	FileSize      int64
	Format        string
	IsDirect      bool
}

var validThumbnailFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true, "bmp": true,
}

func (t ThumbnailEmbedded) Validate() error {
	if t.Width < 0 || t.Height < 0 {
		return fmt.Errorf("width and height must be >= 0")
	}
	if t.Format != "" && !validThumbnailFormats[t.Format] {
		return fmt.Errorf("unsupported thumbnail format %q", t.Format)
	}
	if t.IsDirect && t.ThumbnailPath == nil {
		return fmt.Errorf("direct thumbnails must carry a thumbnailPath")
	}
	return nil
}

// CacheImage is a generated full-resolution cache render of an image,
// stored under a managed CacheFolder for fast delivery.
type CacheImage struct {
	SourceImageID uuid.UUID
	CachePath     string
	CacheFolderID uuid.UUID
	Width         int
	Height        int
	FileSize      int64
	Format        string
	CachedAt      time.Time
}
