package index

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/thumbpolicy"
)

const thumbTTL = 30 * 24 * time.Hour

// thumbCacheValue and its (en|de)coders persist the format a cached
// thumbnail was actually written in alongside its bytes, so a cache hit
// can build a correct data: URL without re-deriving the format from the
// collection's (possibly stale) thumbnail metadata.
func encodeThumbCacheValue(format string, raw []byte) string {
	return format + "|" + base64.StdEncoding.EncodeToString(raw)
}

func decodeThumbCacheValue(value string) (raw []byte, format string, err error) {
	format, encoded, ok := strings.Cut(value, "|")
	if !ok {
		// legacy value with no format prefix
		raw, err = base64.StdEncoding.DecodeString(value)
		return raw, "", err
	}
	raw, err = base64.StdEncoding.DecodeString(encoded)
	return raw, format, err
}

// ThumbnailSource reads the raw bytes of a stored thumbnail file. The
// production implementation reads from local disk; the scenario tests use
// it too, and their collections carry no thumbnails, so nothing is read.
type ThumbnailSource interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// FileThumbnailSource reads thumbnails from local disk.
type FileThumbnailSource struct{}

func (FileThumbnailSource) Read(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// GetCachedThumbnail returns the cached raw bytes for a collection, or nil
// if nothing is cached (a miss, not an error).
func (e *Engine) GetCachedThumbnail(ctx context.Context, collectionID uuid.UUID) ([]byte, error) {
	raw, _, err := e.GetCachedThumbnailWithFormat(ctx, collectionID)
	return raw, err
}

// GetCachedThumbnailWithFormat returns the cached raw bytes for a
// collection along with the format they were encoded in when written, or
// nil/"" if nothing is cached (a miss, not an error).
func (e *Engine) GetCachedThumbnailWithFormat(ctx context.Context, collectionID uuid.UUID) ([]byte, string, error) {
	value, err := e.kv.Get(ctx, thumbKey(collectionID.String()))
	if err != nil {
		return nil, "", nil // treat any read failure (including not-found) as a cache miss
	}
	raw, format, err := decodeThumbCacheValue(value)
	if err != nil {
		return nil, "", err
	}
	return raw, format, nil
}

// SetCachedThumbnail stores raw bytes for a collection, tagged with the
// format they were encoded in, with the 30-day TTL.
func (e *Engine) SetCachedThumbnail(ctx context.Context, collectionID uuid.UUID, raw []byte, format string) error {
	return e.kv.Set(ctx, thumbKey(collectionID.String()), encodeThumbCacheValue(format, raw), thumbTTL)
}

// CachedThumbnail pairs raw thumbnail bytes with their encoded format for
// batch writes.
type CachedThumbnail struct {
	Raw    []byte
	Format string
}

// BatchCacheThumbnails caches raw bytes for many collections in one round
// trip via the KVS batch interface.
func (e *Engine) BatchCacheThumbnails(ctx context.Context, thumbs map[uuid.UUID]CachedThumbnail) error {
	if len(thumbs) == 0 {
		return nil
	}
	batch := e.kv.Batch()
	for id, t := range thumbs {
		batch.Set(thumbKey(id.String()), encodeThumbCacheValue(t.Format, t.Raw), thumbTTL)
	}
	return batch.Exec(ctx)
}

// resolveThumbnailDataURL applies the three-layer inlining policy (spec
// 4.1.5) to a collection's first thumbnail and returns a ready-to-render
// data: URL, or nil if the collection has no thumbnail. It checks the
// thumb: cache before reading from disk, and seeds the cache on a miss.
func (e *Engine) resolveThumbnailDataURL(ctx context.Context, source ThumbnailSource, c *catalog.Collection) *string {
	thumbs := c.Thumbnails()
	if len(thumbs) == 0 {
		return nil
	}
	t := thumbs[0]
	if t.ThumbnailPath == nil {
		return nil
	}

	policyInput := thumbpolicy.Thumbnail{
		Width: t.Width, Height: t.Height, FileSize: t.FileSize,
		Format: t.Format, IsDirect: t.IsDirect,
	}

	raw, outFormat, err := e.GetCachedThumbnailWithFormat(ctx, c.ID())
	if err != nil {
		log.Printf("index: cache read failed for thumbnail %s: %v", c.ID(), err)
	}

	if raw == nil {
		outFormat = t.Format
		raw, err = source.Read(ctx, *t.ThumbnailPath)
		if err != nil {
			log.Printf("index: thumbnail source read failed for %s (%s): %v", c.ID(), *t.ThumbnailPath, err)
			return nil
		}

		if thumbpolicy.NeedsReencode(policyInput) {
			raw, outFormat, err = e.reencode(raw)
			if err != nil {
				log.Printf("index: thumbnail re-encode failed for %s: %v", c.ID(), err)
				return nil
			}
		}

		if err := e.SetCachedThumbnail(ctx, c.ID(), raw, outFormat); err != nil {
			log.Printf("index: thumbnail cache write failed for %s: %v", c.ID(), err)
		}
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", imgproc.MimeForFormat(outFormat), base64.StdEncoding.EncodeToString(raw))
	return &dataURL
}

func (e *Engine) reencode(raw []byte) (out []byte, format string, err error) {
	img, err := e.processor.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", err
	}
	resized := e.processor.Resize(img, e.thumbCfg.MaxDimension, e.thumbCfg.MaxDimension)

	var buf bytes.Buffer
	if err := e.processor.Encode(&buf, resized, e.thumbCfg.Format, e.thumbCfg.Quality); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), string(e.thumbCfg.Format), nil
}
