// Package cachefolder models the managed disk locations that generated
// cache images are written to, and picks among them by priority and
// remaining capacity.
package cachefolder

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/shared"
)

// CacheFolder is a disk location the CleanupCache/GenerateCache job
// handlers write generated cache images into.
type CacheFolder struct {
	id                   uuid.UUID
	name                 string
	path                 string
	currentSizeBytes     int64
	maxSizeBytes         int64
	totalFiles           int
	cachedCollectionIDs  []uuid.UUID
	isActive             bool
	priority             int
	createdAt            time.Time
	updatedAt            time.Time
}

// NewCacheFolder creates an active cache folder with no cached content yet.
func NewCacheFolder(name, path string, maxSizeBytes int64, priority int) (*CacheFolder, error) {
	if name == "" {
		return nil, shared.NewFieldError(shared.ErrInvalidInput, "name", "cache folder name is required")
	}
	if path == "" {
		return nil, shared.NewFieldError(shared.ErrInvalidInput, "path", "cache folder path is required")
	}
	if maxSizeBytes <= 0 {
		return nil, shared.NewFieldError(shared.ErrInvalidInput, "max_size_bytes", "max size must be positive")
	}

	now := time.Now()
	return &CacheFolder{
		id:           shared.NewUUID(),
		name:         name,
		path:         path,
		maxSizeBytes: maxSizeBytes,
		isActive:     true,
		priority:     priority,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	name, path string,
	currentSizeBytes, maxSizeBytes int64,
	totalFiles int,
	cachedCollectionIDs []uuid.UUID,
	isActive bool,
	priority int,
	createdAt, updatedAt time.Time,
) *CacheFolder {
	return &CacheFolder{
		id:                  id,
		name:                name,
		path:                path,
		currentSizeBytes:    currentSizeBytes,
		maxSizeBytes:        maxSizeBytes,
		totalFiles:          totalFiles,
		cachedCollectionIDs: cachedCollectionIDs,
		isActive:            isActive,
		priority:            priority,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

func (f *CacheFolder) ID() uuid.UUID                    { return f.id }
func (f *CacheFolder) Name() string                     { return f.name }
func (f *CacheFolder) Path() string                     { return f.path }
func (f *CacheFolder) CurrentSizeBytes() int64          { return f.currentSizeBytes }
func (f *CacheFolder) MaxSizeBytes() int64              { return f.maxSizeBytes }
func (f *CacheFolder) TotalFiles() int                  { return f.totalFiles }
func (f *CacheFolder) CachedCollectionIDs() []uuid.UUID { return f.cachedCollectionIDs }
func (f *CacheFolder) IsActive() bool                   { return f.isActive }
func (f *CacheFolder) Priority() int                    { return f.priority }
func (f *CacheFolder) CreatedAt() time.Time             { return f.createdAt }
func (f *CacheFolder) UpdatedAt() time.Time             { return f.updatedAt }

// RemainingBytes is how much more this folder can absorb before it is full.
func (f *CacheFolder) RemainingBytes() int64 {
	remaining := f.maxSizeBytes - f.currentSizeBytes
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanFit reports whether a file of the given size fits within this
// folder's remaining capacity.
func (f *CacheFolder) CanFit(sizeBytes int64) bool {
	return f.isActive && sizeBytes <= f.RemainingBytes()
}

// RecordAddition tracks a newly written cache file against this folder.
func (f *CacheFolder) RecordAddition(collectionID uuid.UUID, sizeBytes int64) {
	f.currentSizeBytes += sizeBytes
	f.totalFiles++
	f.cachedCollectionIDs = append(f.cachedCollectionIDs, collectionID)
	f.updatedAt = time.Now()
}

// RecordRemoval reverses a prior RecordAddition for one file.
func (f *CacheFolder) RecordRemoval(sizeBytes int64) {
	f.currentSizeBytes -= sizeBytes
	if f.currentSizeBytes < 0 {
		f.currentSizeBytes = 0
	}
	if f.totalFiles > 0 {
		f.totalFiles--
	}
	f.updatedAt = time.Now()
}

// ReplaceUsage overwrites the folder's usage counters and tracked
// collection ids with a freshly recomputed set, used by the cleanup job
// to reconcile drift instead of relying on incremental bookkeeping alone.
func (f *CacheFolder) ReplaceUsage(sizeBytes int64, fileCount int, collectionIDs []uuid.UUID) {
	f.currentSizeBytes = sizeBytes
	f.totalFiles = fileCount
	f.cachedCollectionIDs = collectionIDs
	f.updatedAt = time.Now()
}

func (f *CacheFolder) SetActive(active bool) {
	f.isActive = active
	f.updatedAt = time.Now()
}

// SelectFolder picks the highest-priority (largest priority value) active
// folder with enough remaining capacity for sizeBytes. Ties are broken by
// most free space. Returns nil if no folder qualifies.
func SelectFolder(folders []*CacheFolder, sizeBytes int64) *CacheFolder {
	candidates := make([]*CacheFolder, 0, len(folders))
	for _, f := range folders {
		if f.CanFit(sizeBytes) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].RemainingBytes() > candidates[j].RemainingBytes()
	})
	return candidates[0]
}
