package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// FileType distinguishes an image backed by a real filesystem entry from
// one backed by an entry inside an archive.
type FileType string

const (
	FileTypeRegular      FileType = "RegularFile"
	FileTypeArchiveEntry FileType = "ArchiveEntry"
)

func (f FileType) IsValid() bool {
	switch f {
	case FileTypeRegular, FileTypeArchiveEntry:
		return true
	default:
		return false
	}
}

// ArchiveEntry locates an image inside an archive-backed collection, or
// carries zero values for a folder-backed one.
type ArchiveEntry struct {
	ArchivePath      string
	EntryName        string
	EntryPath        string
	FileType         FileType
	CompressedSize   int64
	UncompressedSize int64
}

// ImageEntry is a single image within a Collection.
type ImageEntry struct {
	ID           uuid.UUID
	Filename     string
	RelativePath string
	Width        int
	Height       int
	FileSize     int64
	ArchiveEntry ArchiveEntry
}

// Validate enforces the archive/folder entryName invariants from the
// collection type the entry belongs to.
func (e ImageEntry) Validate(collectionType Type) error {
	if e.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if e.Width < 0 || e.Height < 0 {
		return fmt.Errorf("width and height must be >= 0")
	}
	switch collectionType {
	case TypeArchive:
		if e.ArchiveEntry.FileType != FileTypeArchiveEntry {
			return fmt.Errorf("archive collection entries must have fileType=ArchiveEntry")
		}
		if e.ArchiveEntry.EntryName == "" {
			return fmt.Errorf("entryName is required for archive entries")
		}
	case TypeFolder:
		if e.ArchiveEntry.EntryName != "" && e.ArchiveEntry.EntryName != e.RelativePath {
			return fmt.Errorf("entryName must equal relativePath for folder entries")
		}
	}
	return nil
}

// HasKnownDimensions reports whether width/height have been extracted.
// Zero in either field means "unknown, pending extraction".
func (e ImageEntry) HasKnownDimensions() bool {
	return e.Width > 0 && e.Height > 0
}
