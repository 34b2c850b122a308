package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageEntry_Validate_FolderEntryNameMatchesRelativePath(t *testing.T) {
	entry := ImageEntry{
		Filename:     "cover.jpg",
		RelativePath: "covers/cover.jpg",
		ArchiveEntry: ArchiveEntry{EntryName: "covers/cover.jpg"},
	}
	assert.NoError(t, entry.Validate(TypeFolder))
}

func TestImageEntry_Validate_FolderEntryNameMismatch(t *testing.T) {
	entry := ImageEntry{
		Filename:     "cover.jpg",
		RelativePath: "covers/cover.jpg",
		ArchiveEntry: ArchiveEntry{EntryName: "other/cover.jpg"},
	}
	assert.Error(t, entry.Validate(TypeFolder))
}

func TestImageEntry_Validate_ArchiveRequiresArchiveEntryFileType(t *testing.T) {
	entry := ImageEntry{
		Filename: "page001.jpg",
		ArchiveEntry: ArchiveEntry{
			EntryName: "vol1/page001.jpg",
			FileType:  FileTypeRegular,
		},
	}
	assert.Error(t, entry.Validate(TypeArchive))
}

func TestImageEntry_Validate_ArchiveValid(t *testing.T) {
	entry := ImageEntry{
		Filename: "page001.jpg",
		ArchiveEntry: ArchiveEntry{
			EntryName: "vol1/page001.jpg",
			FileType:  FileTypeArchiveEntry,
		},
	}
	assert.NoError(t, entry.Validate(TypeArchive))
}

func TestImageEntry_Validate_NegativeDimensions(t *testing.T) {
	entry := ImageEntry{Filename: "x.jpg", Width: -1}
	assert.Error(t, entry.Validate(TypeFolder))
}

func TestImageEntry_HasKnownDimensions(t *testing.T) {
	assert.False(t, ImageEntry{Width: 0, Height: 100}.HasKnownDimensions())
	assert.True(t, ImageEntry{Width: 10, Height: 10}.HasKnownDimensions())
}
