package index

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/catalog"
)

// GetNavigation locates collectionID's immediate neighbors in the given
// sorted set and reports its 1-based position.
func (e *Engine) GetNavigation(ctx context.Context, collectionID uuid.UUID, field SortField, dir SortDirection) (Navigation, error) {
	key := sortedKey(field, dir)
	idStr := collectionID.String()

	rank, found, err := e.kv.ZRank(ctx, key, idStr, false)
	if err != nil {
		return Navigation{}, err
	}
	if !found {
		return Navigation{}, nil
	}

	total, err := e.kv.ZCard(ctx, key)
	if err != nil {
		return Navigation{}, err
	}

	nav := Navigation{
		CurrentPosition: int(rank) + 1,
		Total:           int(total),
		HasPrev:         rank > 0,
		HasNext:         rank < total-1,
	}

	if nav.HasPrev {
		if ids, err := e.kv.ZRangeByRank(ctx, key, rank-1, rank-1, false); err == nil && len(ids) == 1 {
			if id, err := uuid.Parse(ids[0]); err == nil {
				nav.PrevID = &id
			}
		}
	}
	if nav.HasNext {
		if ids, err := e.kv.ZRangeByRank(ctx, key, rank+1, rank+1, false); err == nil && len(ids) == 1 {
			if id, err := uuid.Parse(ids[0]); err == nil {
				nav.NextID = &id
			}
		}
	}

	return nav, nil
}

// GetSiblings returns a window of summaries around collectionID. When
// page=1 the implementation substitutes the page that actually contains
// collectionID, per the public contract.
func (e *Engine) GetSiblings(ctx context.Context, collectionID uuid.UUID, page, size int, field SortField, dir SortDirection) (SiblingsPage, error) {
	key := sortedKey(field, dir)
	idStr := collectionID.String()

	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	total, err := e.kv.ZCard(ctx, key)
	if err != nil {
		return SiblingsPage{}, err
	}

	currentPosition := 0
	if page == 1 {
		if rank, found, err := e.kv.ZRank(ctx, key, idStr, false); err == nil && found {
			currentPosition = int(rank) + 1
			page = currentPosition/size + 1
			if currentPosition%size == 0 {
				page--
			}
		}
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	start := int64(page-1) * int64(size)
	stop := start + int64(size) - 1

	ids, err := e.kv.ZRangeByRank(ctx, key, start, stop, false)
	if err != nil {
		return SiblingsPage{}, err
	}

	summaries := e.summariesFor(ctx, ids)

	return SiblingsPage{
		Siblings:        summaries,
		CurrentPosition: currentPosition,
		CurrentPage:     page,
		Total:           int(total),
		TotalPages:      totalPages,
	}, nil
}

// GetPage returns a standard, zero-indexed-free page over the primary
// sorted set for field/dir.
func (e *Engine) GetPage(ctx context.Context, page, size int, field SortField, dir SortDirection) (Page, error) {
	return e.pageFromKey(ctx, sortedKey(field, dir), page, size)
}

// GetByLibrary returns a page over the by_library secondary index.
func (e *Engine) GetByLibrary(ctx context.Context, libraryID uuid.UUID, page, size int, field SortField, dir SortDirection) (Page, error) {
	return e.pageFromKey(ctx, sortedByLibraryKey(libraryID.String(), field, dir), page, size)
}

// GetByType returns a page over the by_type secondary index.
func (e *Engine) GetByType(ctx context.Context, typ catalog.Type, page, size int, field SortField, dir SortDirection) (Page, error) {
	return e.pageFromKey(ctx, sortedByTypeKey(string(typ), field, dir), page, size)
}

func (e *Engine) pageFromKey(ctx context.Context, key string, page, size int) (Page, error) {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	total, err := e.kv.ZCard(ctx, key)
	if err != nil {
		return Page{}, err
	}

	start := int64(page-1) * int64(size)
	stop := start + int64(size) - 1

	ids, err := e.kv.ZRangeByRank(ctx, key, start, stop, false)
	if err != nil {
		return Page{}, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return Page{
		Items:      e.summariesFor(ctx, ids),
		Page:       page,
		PageSize:   size,
		Total:      int(total),
		TotalPages: totalPages,
	}, nil
}

// SearchPage runs a case-insensitive substring match on name/path against
// DocStore, then joins summaries/thumbnails from KVS, falling back to a
// freshly built summary when KVS has not indexed a match yet.
func (e *Engine) SearchPage(ctx context.Context, query string, page, size int, field SortField, dir SortDirection) (Page, error) {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	matches, err := e.repo.Search(ctx, query)
	if err != nil {
		return Page{}, err
	}

	total := len(matches)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	stop := start + size
	if stop > total {
		stop = total
	}

	items := make([]catalog.CollectionSummary, 0, stop-start)
	for _, c := range matches[start:stop] {
		if raw, err := e.kv.Get(ctx, summaryKey(c.ID().String())); err == nil {
			if summary, err := decodeSummary(raw); err == nil {
				items = append(items, summary)
				continue
			}
		}
		items = append(items, catalog.BuildSummary(c, nil))
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}

	return Page{Items: items, Page: page, PageSize: size, Total: total, TotalPages: totalPages}, nil
}

// summariesFor resolves a list of collection ids (in the order given,
// which is the sorted-set traversal order and must not be re-sorted) into
// their cached summaries, skipping any id whose summary is missing.
func (e *Engine) summariesFor(ctx context.Context, ids []string) []catalog.CollectionSummary {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = summaryKey(id)
	}

	raws, err := e.kv.MGet(ctx, keys)
	if err != nil {
		log.Printf("index: summariesFor: mget failed: %v", err)
		return nil
	}

	out := make([]catalog.CollectionSummary, 0, len(ids))
	for _, raw := range raws {
		if raw == "" {
			continue
		}
		summary, err := decodeSummary(raw)
		if err != nil {
			continue
		}
		out = append(out, summary)
	}
	return out
}
