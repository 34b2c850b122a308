package index

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/kvs"
)

// AddOrUpdate writes every primary and secondary sorted-set entry, the
// summary payload, and the index state for c. KVS failures are logged and
// swallowed: DocStore remains the source of truth, and a later rebuild or
// verify pass reconciles anything this call could not write.
func (e *Engine) AddOrUpdate(ctx context.Context, c *catalog.Collection) {
	idStr := c.ID().String()

	dataURL := e.resolveThumbnailDataURL(ctx, e.source, c)
	summary := catalog.BuildSummary(c, dataURL)
	state := catalog.NewIndexState(c)

	summaryJSON, err := encodeSummary(summary)
	if err != nil {
		log.Printf("index: AddOrUpdate %s: encode summary: %v", idStr, err)
		return
	}
	stateJSON, err := encodeState(state)
	if err != nil {
		log.Printf("index: AddOrUpdate %s: encode state: %v", idStr, err)
		return
	}

	batch := e.kv.Batch()
	for _, field := range SortFields {
		for _, dir := range Directions {
			score := Score(c, field, dir)
			batch.ZAdd(sortedKey(field, dir), kvs.Member{Score: score, Value: idStr})
			if lib := c.LibraryID(); lib != nil {
				batch.ZAdd(sortedByLibraryKey(lib.String(), field, dir), kvs.Member{Score: score, Value: idStr})
			}
			batch.ZAdd(sortedByTypeKey(string(c.Type()), field, dir), kvs.Member{Score: score, Value: idStr})
		}
	}
	batch.Set(summaryKey(idStr), summaryJSON, 0)
	batch.Set(stateKey(idStr), stateJSON, 0)

	if err := batch.Exec(ctx); err != nil {
		log.Printf("index: AddOrUpdate %s: kvs write failed: %v", idStr, err)
		return
	}
	e.UpdateIncrement(ctx, "indexed "+c.Name())
}

// Remove deletes every primary and secondary sorted-set entry, the summary,
// and the index state for collectionID. thumb: is never touched; it has
// its own TTL and survives removal. The previous summary, if still
// present, supplies the libraryID/type needed to find the secondary keys;
// if it is already gone, only the primary keys are cleaned up.
func (e *Engine) Remove(ctx context.Context, collectionID uuid.UUID) {
	idStr := collectionID.String()

	var libraryID *uuid.UUID
	var typ catalog.Type
	if raw, err := e.kv.Get(ctx, summaryKey(idStr)); err == nil {
		if summary, err := decodeSummary(raw); err == nil {
			libraryID = summary.LibraryID
			typ = summary.Type
		}
	}

	delKeys := []string{summaryKey(idStr), stateKey(idStr)}

	for _, field := range SortFields {
		for _, dir := range Directions {
			if err := e.kv.ZRem(ctx, sortedKey(field, dir), idStr); err != nil {
				log.Printf("index: Remove %s: zrem primary: %v", idStr, err)
			}
			if libraryID != nil {
				if err := e.kv.ZRem(ctx, sortedByLibraryKey(libraryID.String(), field, dir), idStr); err != nil {
					log.Printf("index: Remove %s: zrem by_library: %v", idStr, err)
				}
			}
			if typ != "" {
				if err := e.kv.ZRem(ctx, sortedByTypeKey(string(typ), field, dir), idStr); err != nil {
					log.Printf("index: Remove %s: zrem by_type: %v", idStr, err)
				}
			}
		}
	}

	if err := e.kv.Del(ctx, delKeys...); err != nil {
		log.Printf("index: Remove %s: del summary/state: %v", idStr, err)
		return
	}
	e.UpdateIncrement(ctx, "removed "+idStr)
}
