// Package thumbpolicy decides whether a collection's stored thumbnail can
// be inlined as-is into a CollectionSummary, or must first be re-encoded at
// the configured thumbnail size.
package thumbpolicy

// Thumbnail is the subset of ThumbnailEmbedded fields the policy needs.
type Thumbnail struct {
	Width     int
	Height    int
	FileSize  int64
	Format    string
	IsDirect  bool
}

const (
	maxInlineDimension = 400
	maxInlineFileSize  = 500 * 1024 // 500 KiB
)

// NeedsReencode applies the three-layer decision: a thumbnail pointing
// directly at the original image, or one whose dimensions exceed 400px on
// either side, or whose file size exceeds 500 KiB, must be re-encoded
// before being inlined.
func NeedsReencode(t Thumbnail) bool {
	if t.IsDirect {
		return true
	}
	if t.Width > maxInlineDimension || t.Height > maxInlineDimension {
		return true
	}
	if t.FileSize > maxInlineFileSize {
		return true
	}
	return false
}
