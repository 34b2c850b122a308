// Package index implements the Collection Index Engine: a denormalized,
// in-memory sorted-index layer over the document store that serves
// ordered, paginated, filtered views of the Collection set.
package index

import "fmt"

const keyPrefix = "collection_index:"

// SortField names the fields the primary and secondary sorted sets can be
// keyed by.
type SortField string

const (
	FieldUpdatedAt  SortField = "updatedAt"
	FieldCreatedAt  SortField = "createdAt"
	FieldName       SortField = "name"
	FieldImageCount SortField = "imageCount"
	FieldTotalSize  SortField = "totalSize"
)

func (f SortField) IsValid() bool {
	switch f {
	case FieldUpdatedAt, FieldCreatedAt, FieldName, FieldImageCount, FieldTotalSize:
		return true
	default:
		return false
	}
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

func (d SortDirection) IsValid() bool {
	return d == Asc || d == Desc
}

// SortFields lists every sort field the spec requires a primary index for.
var SortFields = []SortField{FieldUpdatedAt, FieldCreatedAt, FieldName, FieldImageCount, FieldTotalSize}

// Directions lists both sort directions.
var Directions = []SortDirection{Asc, Desc}

func sortedKey(field SortField, dir SortDirection) string {
	return fmt.Sprintf("%ssorted:%s:%s", keyPrefix, field, dir)
}

func sortedByLibraryKey(libraryID string, field SortField, dir SortDirection) string {
	return fmt.Sprintf("%ssorted:by_library:%s:%s:%s", keyPrefix, libraryID, field, dir)
}

func sortedByTypeKey(typeCode string, field SortField, dir SortDirection) string {
	return fmt.Sprintf("%ssorted:by_type:%s:%s:%s", keyPrefix, typeCode, field, dir)
}

func summaryKey(collectionID string) string {
	return fmt.Sprintf("%sdata:%s", keyPrefix, collectionID)
}

func stateKey(collectionID string) string {
	return fmt.Sprintf("%sstate:%s", keyPrefix, collectionID)
}

func thumbKey(collectionID string) string {
	return fmt.Sprintf("%sthumb:%s", keyPrefix, collectionID)
}

const (
	keyStatsTotal        = keyPrefix + "stats:total"
	keyLastRebuild        = keyPrefix + "last_rebuild"
	keyDashboardStats     = keyPrefix + "dashboard:statistics"
	keyDashboardActivity  = keyPrefix + "dashboard:metadata"
)

// allPrimaryKeys returns every primary sorted-set key (the full 5x2=10).
func allPrimaryKeys() []string {
	keys := make([]string, 0, len(SortFields)*len(Directions))
	for _, f := range SortFields {
		for _, d := range Directions {
			keys = append(keys, sortedKey(f, d))
		}
	}
	return keys
}

// scanPrefixes lists the prefixes a rebuild's scan-delete clearing
// strategy removes. thumb: is intentionally excluded: it has its own
// 30-day TTL and survives index resets.
var scanPrefixes = []string{keyPrefix + "sorted:", keyPrefix + "data:", keyPrefix + "state:"}
