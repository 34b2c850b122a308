// Package archiverepair rebuilds the in-archive or in-folder entry paths
// of legacy ImageEntry records whose entryName was stored as a bare
// filename instead of a full path.
package archiverepair

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	"github.com/collectionvault/index-engine/internal/catalog"
)

// Candidate is one real path discovered by re-scanning an archive or
// folder, used as the repair ladder's source of truth.
type Candidate struct {
	EntryName    string // full path inside the archive, or relative to the folder root
	RelativePath string
}

// Result reports what happened to a single entry during repair.
type Result struct {
	Entry   catalog.ImageEntry
	Matched bool
	Reason  string
}

// Repair rewrites each entry's ArchiveEntry.EntryName using the
// preferred-match ladder: exact entryName match, then exact relativePath
// match, then filename-only fallback. Entries with no candidate match are
// returned unmodified with Matched=false.
func Repair(entries []catalog.ImageEntry, candidates []Candidate) []Result {
	byEntryName := make(map[string]Candidate, len(candidates))
	byRelativePath := make(map[string]Candidate, len(candidates))
	byFilename := make(map[string]Candidate, len(candidates))

	for _, c := range candidates {
		byEntryName[c.EntryName] = c
		byRelativePath[c.RelativePath] = c
		name := filepath.Base(c.EntryName)
		if _, exists := byFilename[name]; !exists {
			byFilename[name] = c
		}
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if c, ok := byEntryName[entry.ArchiveEntry.EntryName]; ok {
			entry.ArchiveEntry.EntryName = c.EntryName
			entry.RelativePath = c.RelativePath
			results = append(results, Result{Entry: entry, Matched: true, Reason: "entryName"})
			continue
		}
		if c, ok := byRelativePath[entry.RelativePath]; ok {
			entry.ArchiveEntry.EntryName = c.EntryName
			results = append(results, Result{Entry: entry, Matched: true, Reason: "relativePath"})
			continue
		}
		if c, ok := byFilename[entry.Filename]; ok {
			entry.ArchiveEntry.EntryName = c.EntryName
			entry.RelativePath = c.RelativePath
			results = append(results, Result{Entry: entry, Matched: true, Reason: "filename"})
			continue
		}
		results = append(results, Result{Entry: entry, Matched: false, Reason: "no candidate"})
	}
	return results
}

// ScanArchive opens a zip-backed collection and lists its usable entries as
// repair candidates. __MACOSX/ entries are excluded outright; AppleDouble
// (._*) entries are attempted but a decode failure on them is expected and
// silently skipped rather than propagated.
func ScanArchive(archivePath string) ([]Candidate, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var candidates []Candidate
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		base := filepath.Base(f.Name)
		if strings.HasPrefix(base, "._") {
			rc, err := f.Open()
			if err != nil {
				continue
			}
			rc.Close()
		}
		candidates = append(candidates, Candidate{EntryName: f.Name, RelativePath: f.Name})
	}
	return candidates, nil
}

// ScanFolder walks a folder-backed collection and lists its files as
// repair candidates, relative to root.
func ScanFolder(root string) ([]Candidate, error) {
	var candidates []Candidate
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		candidates = append(candidates, Candidate{EntryName: rel, RelativePath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
