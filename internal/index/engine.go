package index

import (
	"context"

	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/kvs"
)

// ThumbnailSettings configures the re-encode path of the thumbnail
// inlining policy (spec 4.1.5). In production these are read from the
// SystemSetting store and cached; the Engine accepts them directly so
// callers (and tests) control the cache refresh policy themselves.
type ThumbnailSettings struct {
	MaxDimension int
	Quality      int
	Format       imgproc.Format
}

// DefaultThumbnailSettings mirrors the documented defaults (300x300 for
// GenerateThumbnails jobs; the index engine's own re-encode path reuses
// them when no override is configured).
func DefaultThumbnailSettings() ThumbnailSettings {
	return ThumbnailSettings{MaxDimension: 300, Quality: 85, Format: imgproc.FormatJPEG}
}

// Engine is the Collection Index Engine: it keeps KVS sorted sets,
// summaries, and state records in sync with DocStore's Collection set and
// serves the navigation/paging/search/thumbnail/dashboard operations.
type Engine struct {
	kv        kvs.Store
	doc       docstore.Store
	repo      *catalog.Repository
	processor imgproc.Processor
	source    ThumbnailSource
	thumbCfg  ThumbnailSettings
}

// New builds an Engine over the given adapters.
func New(kv kvs.Store, doc docstore.Store, processor imgproc.Processor, source ThumbnailSource, thumbCfg ThumbnailSettings) *Engine {
	return &Engine{
		kv:        kv,
		doc:       doc,
		repo:      catalog.NewRepository(doc),
		processor: processor,
		source:    source,
		thumbCfg:  thumbCfg,
	}
}

// ready reports whether a single KVS ping succeeds. waitForReady polls it
// for up to 10s in the rebuild algorithm's step 1, and the dashboard pass
// records it as the KVS health flag.
func (e *Engine) ready(ctx context.Context) bool {
	if err := e.kv.Ping(ctx); err == nil {
		return true
	}
	return false
}
