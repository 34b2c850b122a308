package jobs

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/collectionvault/index-engine/internal/catalog"
)

// ImageSource reads the raw bytes of a single embedded image, whether the
// collection is folder- or archive-backed.
type ImageSource interface {
	Read(ctx context.Context, c *catalog.Collection, img catalog.ImageEntry) ([]byte, error)
}

// FileImageSource reads folder entries directly off disk and archive
// entries by re-opening the zip file and seeking to the named entry.
type FileImageSource struct{}

func (FileImageSource) Read(ctx context.Context, c *catalog.Collection, img catalog.ImageEntry) ([]byte, error) {
	if c.Type() == catalog.TypeArchive {
		return readArchiveEntry(c.Path(), img.ArchiveEntry.EntryPath, img.ArchiveEntry.EntryName)
	}
	return os.ReadFile(filepath.Join(c.Path(), img.RelativePath))
}

func readArchiveEntry(archivePath, entryPath, entryName string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	want := entryPath
	if want == "" {
		want = entryName
	}

	for _, f := range r.File {
		if f.Name != want {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in archive %s", want, archivePath)
}
