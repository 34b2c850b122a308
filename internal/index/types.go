package index

import (
	"time"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/catalog"
)

// Navigation is the result of GetNavigation: the collection's immediate
// neighbors under a given sort.
type Navigation struct {
	PrevID          *uuid.UUID
	NextID          *uuid.UUID
	CurrentPosition int // 1-based
	Total           int
	HasPrev         bool
	HasNext         bool
}

// SiblingsPage is the result of GetSiblings: a window of summaries around
// a given collection, in sorted-set traversal order.
type SiblingsPage struct {
	Siblings        []catalog.CollectionSummary
	CurrentPosition int // 1-based
	CurrentPage     int
	Total           int
	TotalPages      int
}

// Page is a standard page of collection summaries.
type Page struct {
	Items      []catalog.CollectionSummary
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// RebuildMode selects how RebuildIndex processes the collection set.
type RebuildMode string

const (
	ModeFull            RebuildMode = "Full"
	ModeChangedOnly     RebuildMode = "ChangedOnly"
	ModeForceRebuildAll RebuildMode = "ForceRebuildAll"
	ModeVerify          RebuildMode = "Verify"
)

// RebuildOptions tunes a RebuildIndex call.
type RebuildOptions struct {
	DryRun              bool
	SkipThumbnailCaching bool
}

// RebuildStatistics reports what a RebuildIndex call did.
type RebuildStatistics struct {
	Total    int
	Rebuilt  int
	Skipped  int
	Duration time.Duration
	PeakMem  uint64
}

// VerifyResult reports the three-phase diff a VerifyIndex call found (and,
// when dryRun=false, applied).
type VerifyResult struct {
	MissingInRedis    []uuid.UUID
	OutdatedInRedis   []uuid.UUID
	OrphanedInRedis   []uuid.UUID
	MissingThumbnails []uuid.UUID
	ToAdd             int
	ToUpdate          int
	ToRemove          int
	IsConsistent      bool
	Duration          time.Duration
}
