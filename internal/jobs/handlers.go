package jobs

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/cachefolder"
	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/index"
	"github.com/collectionvault/index-engine/internal/jobmodel"
	"github.com/collectionvault/index-engine/internal/mbus"
	"github.com/collectionvault/index-engine/internal/shared"
)

const (
	defaultThumbnailWidth  = 300
	defaultThumbnailHeight = 300
	defaultCacheWidth      = 1920
	defaultCacheHeight     = 1080
	cacheEntryRetention    = 30 * 24 * time.Hour
)

// Handlers implements the four BackgroundJob type handlers described by the
// job-types table: ScanCollection, GenerateThumbnails, GenerateCache,
// CleanupCache. Each returns a short, human-readable result string on
// success, matching the spec's "Result" column.
type Handlers struct {
	engine      *index.Engine
	collections *catalog.Repository
	folders     *cachefolder.Repository
	processor   imgproc.Processor
	source      ImageSource
	bus         mbus.Bus
}

// NewHandlers builds the handler set. bus may be nil; publish is then a
// no-op (useful for tests and for deployments without a broker).
func NewHandlers(engine *index.Engine, collections *catalog.Repository, folders *cachefolder.Repository, processor imgproc.Processor, source ImageSource, bus mbus.Bus) *Handlers {
	return &Handlers{
		engine:      engine,
		collections: collections,
		folders:     folders,
		processor:   processor,
		source:      source,
		bus:         bus,
	}
}

// Dispatch routes a job to its type handler and returns the resultMessage
// to persist on success.
func (h *Handlers) Dispatch(ctx context.Context, job *jobmodel.BackgroundJob) (string, error) {
	switch job.JobType() {
	case jobmodel.TypeScanCollection:
		return h.handleScanCollection(ctx, job)
	case jobmodel.TypeGenerateThumbnails:
		return h.handleGenerateThumbnails(ctx, job)
	case jobmodel.TypeGenerateCache:
		return h.handleGenerateCache(ctx, job)
	case jobmodel.TypeCleanupCache:
		return h.handleCleanupCache(ctx, job)
	default:
		return "", fmt.Errorf("%w: unknown job type %q", shared.ErrInvalidInput, job.JobType())
	}
}

func (h *Handlers) requireCollection(ctx context.Context, job *jobmodel.BackgroundJob) (*catalog.Collection, error) {
	if job.CollectionID() == nil {
		return nil, fmt.Errorf("%w: job %s requires a collectionId", shared.ErrInvalidInput, job.ID())
	}
	return h.collections.FindByID(ctx, *job.CollectionID())
}

// handleScanCollection validates the collection exists and re-derives its
// index entry, which is what "triggers full rescan downstream" amounts to
// once the rescan itself (a filesystem/archive walk) has repopulated
// Images/Thumbnails/CacheImages on the Collection aggregate.
func (h *Handlers) handleScanCollection(ctx context.Context, job *jobmodel.BackgroundJob) (string, error) {
	c, err := h.requireCollection(ctx, job)
	if err != nil {
		return "", err
	}
	h.engine.AddOrUpdate(ctx, c)
	job.UpdateProgress(1)
	h.publish(ctx, mbus.RoutingCollectionScan, "collection.scanned", c.ID())
	return fmt.Sprintf("rescanned collection %s: %d images indexed", c.ID(), len(c.Images())), nil
}

// handleGenerateThumbnails generates one thumbnail per embedded image,
// order-aligned with Images(), logging and continuing past per-image
// decode failures. Progress advances after every image, whether it
// succeeded or not; the result count only reflects successes.
func (h *Handlers) handleGenerateThumbnails(ctx context.Context, job *jobmodel.BackgroundJob) (string, error) {
	c, err := h.requireCollection(ctx, job)
	if err != nil {
		return "", err
	}

	width, height := payloadDimensions(job.Payload(), defaultThumbnailWidth, defaultThumbnailHeight)
	folder, err := h.selectFolder(ctx)
	if err != nil {
		return "", err
	}

	thumbnails := make([]catalog.ThumbnailEmbedded, 0, len(c.Images()))
	successes := 0

	for i, img := range c.Images() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		thumb, err := h.buildThumbnail(ctx, c, img, folder, width, height)
		if err != nil {
			log.Printf("generate thumbnail for %s image %d: %v", c.ID(), i, err)
			thumbnails = append(thumbnails, catalog.ThumbnailEmbedded{})
			job.UpdateProgress(i + 1)
			continue
		}

		thumbnails = append(thumbnails, thumb)
		successes++
		job.UpdateProgress(i + 1)
	}

	c.SetThumbnails(thumbnails)
	if err := h.collections.Save(ctx, c); err != nil {
		return "", fmt.Errorf("save collection: %w", err)
	}
	if err := h.folders.Save(ctx, folder); err != nil {
		log.Printf("save cache folder %s: %v", folder.ID(), err)
	}
	h.engine.AddOrUpdate(ctx, c)
	h.publish(ctx, mbus.RoutingThumbnailGenerate, "thumbnails.generated", c.ID())

	return fmt.Sprintf("%d", successes), nil
}

// handleGenerateCache mirrors handleGenerateThumbnails at the larger
// target resolution, writing CacheImage records instead of
// ThumbnailEmbedded ones.
func (h *Handlers) handleGenerateCache(ctx context.Context, job *jobmodel.BackgroundJob) (string, error) {
	c, err := h.requireCollection(ctx, job)
	if err != nil {
		return "", err
	}

	width, height := payloadDimensions(job.Payload(), defaultCacheWidth, defaultCacheHeight)
	folder, err := h.selectFolder(ctx)
	if err != nil {
		return "", err
	}

	cacheImages := make([]catalog.CacheImage, 0, len(c.Images()))
	successes := 0

	for i, img := range c.Images() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		ci, err := h.buildCacheImage(ctx, c, img, folder, width, height)
		if err != nil {
			log.Printf("generate cache image for %s image %d: %v", c.ID(), i, err)
			job.UpdateProgress(i + 1)
			continue
		}

		cacheImages = append(cacheImages, ci)
		folder.RecordAddition(c.ID(), ci.FileSize)
		successes++
		job.UpdateProgress(i + 1)
	}

	c.SetCacheImages(cacheImages)
	if err := h.collections.Save(ctx, c); err != nil {
		return "", fmt.Errorf("save collection: %w", err)
	}
	if err := h.folders.Save(ctx, folder); err != nil {
		log.Printf("save cache folder %s: %v", folder.ID(), err)
	}
	h.publish(ctx, mbus.RoutingCacheGenerate, "cache.generated", c.ID())

	return fmt.Sprintf("%d", successes), nil
}

// handleCleanupCache computes per-folder usage stats, drops cache entries
// belonging to collections that no longer exist or were soft-deleted
// ("expired"), and drops entries older than 30 days, then persists the
// recomputed folder usage.
func (h *Handlers) handleCleanupCache(ctx context.Context, job *jobmodel.BackgroundJob) (string, error) {
	folders, err := h.folders.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("list cache folders: %w", err)
	}

	cutoff := time.Now().Add(-cacheEntryRetention)
	var totalBytes int64
	var totalFiles, removedExpired, removedStale int

	for i, folder := range folders {
		seen := make(map[uuid.UUID]bool)
		var folderBytes int64
		var folderFiles int
		collectionIDs := make([]uuid.UUID, 0, len(folder.CachedCollectionIDs()))

		for _, collectionID := range folder.CachedCollectionIDs() {
			if seen[collectionID] {
				continue
			}
			seen[collectionID] = true

			c, err := h.collections.FindByID(ctx, collectionID)
			if err != nil || c.IsDeleted() {
				removedExpired++
				continue
			}

			kept := make([]catalog.CacheImage, 0, len(c.CacheImages()))
			changed := false
			for _, ci := range c.CacheImages() {
				if ci.CacheFolderID != folder.ID() {
					kept = append(kept, ci)
					continue
				}
				if ci.CachedAt.Before(cutoff) {
					removedStale++
					changed = true
					continue
				}
				kept = append(kept, ci)
				folderBytes += ci.FileSize
				folderFiles++
			}

			if changed {
				c.SetCacheImages(kept)
				if err := h.collections.Save(ctx, c); err != nil {
					log.Printf("save collection %s during cleanup: %v", c.ID(), err)
				}
			}
			if folderFiles > 0 {
				collectionIDs = append(collectionIDs, collectionID)
			}
		}

		folder.ReplaceUsage(folderBytes, folderFiles, collectionIDs)
		if err := h.folders.Save(ctx, folder); err != nil {
			log.Printf("save cache folder %s during cleanup: %v", folder.ID(), err)
		}

		totalBytes += folderBytes
		totalFiles += folderFiles
		folders[i] = folder

		job.UpdateProgress(i + 1)
	}

	h.publish(ctx, mbus.RoutingCollectionScan, "cache.cleaned", uuid.Nil)

	return fmt.Sprintf(
		"cache cleanup: %d folders, %d files, %d bytes retained; %d expired entries removed, %d entries older than 30 days removed",
		len(folders), totalFiles, totalBytes, removedExpired, removedStale,
	), nil
}

func (h *Handlers) selectFolder(ctx context.Context) (*cachefolder.CacheFolder, error) {
	active, err := h.folders.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active cache folders: %w", err)
	}
	folder := cachefolder.SelectFolder(active, 0)
	if folder == nil {
		return nil, fmt.Errorf("%w: no active cache folder with capacity", shared.ErrTransientStore)
	}
	return folder, nil
}

func (h *Handlers) buildThumbnail(ctx context.Context, c *catalog.Collection, img catalog.ImageEntry, folder *cachefolder.CacheFolder, width, height int) (catalog.ThumbnailEmbedded, error) {
	raw, err := h.source.Read(ctx, c, img)
	if err != nil {
		return catalog.ThumbnailEmbedded{}, err
	}
	decoded, err := h.processor.Decode(bytes.NewReader(raw))
	if err != nil {
		return catalog.ThumbnailEmbedded{}, err
	}
	resized := h.processor.Resize(decoded, width, height)
	w, hgt := h.processor.Dimensions(resized)

	var buf bytes.Buffer
	if err := h.processor.Encode(&buf, resized, imgproc.FormatJPEG, 85); err != nil {
		return catalog.ThumbnailEmbedded{}, err
	}

	path := filepath.Join(folder.Path(), "thumbnails", fmt.Sprintf("%s-%s.jpg", c.ID(), img.ID))
	return catalog.ThumbnailEmbedded{
		ThumbnailPath: &path,
		Width:         w,
		Height:        hgt,
		FileSize:      int64(buf.Len()),
		Format:        "jpeg",
		IsDirect:      false,
	}, nil
}

func (h *Handlers) buildCacheImage(ctx context.Context, c *catalog.Collection, img catalog.ImageEntry, folder *cachefolder.CacheFolder, width, height int) (catalog.CacheImage, error) {
	raw, err := h.source.Read(ctx, c, img)
	if err != nil {
		return catalog.CacheImage{}, err
	}
	decoded, err := h.processor.Decode(bytes.NewReader(raw))
	if err != nil {
		return catalog.CacheImage{}, err
	}
	resized := h.processor.Resize(decoded, width, height)
	w, hgt := h.processor.Dimensions(resized)

	var buf bytes.Buffer
	if err := h.processor.Encode(&buf, resized, imgproc.FormatJPEG, 90); err != nil {
		return catalog.CacheImage{}, err
	}

	path := filepath.Join(folder.Path(), "cache", fmt.Sprintf("%s-%s.jpg", c.ID(), img.ID))
	return catalog.CacheImage{
		SourceImageID: img.ID,
		CachePath:     path,
		CacheFolderID: folder.ID(),
		Width:         w,
		Height:        hgt,
		FileSize:      int64(buf.Len()),
		Format:        "jpeg",
		CachedAt:      time.Now(),
	}, nil
}

func (h *Handlers) publish(ctx context.Context, routingKey, messageType string, collectionID uuid.UUID) {
	if h.bus == nil {
		return
	}
	body, err := mbus.MarshalPayload(map[string]string{"collectionId": collectionID.String()})
	if err != nil {
		return
	}
	msg := mbus.Message{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		MessageType: messageType,
		Body:        body,
	}
	if err := h.bus.Publish(ctx, "default", routingKey, msg); err != nil {
		log.Printf("publish %s: %v", messageType, err)
	}
}

func payloadDimensions(payload map[string]any, defaultWidth, defaultHeight int) (int, int) {
	width, height := defaultWidth, defaultHeight
	if payload == nil {
		return width, height
	}
	if v, ok := payload["width"].(float64); ok && v > 0 {
		width = int(v)
	}
	if v, ok := payload["height"].(float64); ok && v > 0 {
		height = int(v)
	}
	return width, height
}
