package index

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VerifyIndex runs the three-phase diff: DocStore->KVS missing/outdated,
// KVS->DocStore orphan scan, then (unless dryRun) applies the
// corresponding add/update/Remove calls.
func (e *Engine) VerifyIndex(ctx context.Context, dryRun bool) (VerifyResult, error) {
	start := time.Now()
	result := VerifyResult{}

	var skip int64
	liveIDs := make(map[string]bool)
	for {
		batch, err := e.repo.ListAll(ctx, skip, rebuildBatchSize)
		if err != nil {
			return VerifyResult{}, err
		}
		if len(batch) == 0 {
			break
		}

		for _, c := range batch {
			idStr := c.ID().String()
			liveIDs[idStr] = true

			raw, err := e.kv.Get(ctx, stateKey(idStr))
			switch {
			case err != nil:
				result.MissingInRedis = append(result.MissingInRedis, c.ID())
			default:
				state, decodeErr := decodeState(raw)
				if decodeErr != nil || state.IsStale(c.UpdatedAt()) {
					result.OutdatedInRedis = append(result.OutdatedInRedis, c.ID())
				} else if thumbs := c.Thumbnails(); len(thumbs) > 0 && !state.HasFirstThumbnail {
					result.OutdatedInRedis = append(result.OutdatedInRedis, c.ID())
				}
			}

			if thumbs := c.Thumbnails(); len(thumbs) > 0 {
				if cached, _ := e.GetCachedThumbnail(ctx, c.ID()); cached == nil {
					result.MissingThumbnails = append(result.MissingThumbnails, c.ID())
				}
			}
		}

		skip += int64(len(batch))
		if len(batch) < rebuildBatchSize {
			break
		}
	}

	stateKeys, err := e.kv.ScanPrefix(ctx, keyPrefix+"state:")
	if err != nil {
		return VerifyResult{}, err
	}
	for _, key := range stateKeys {
		idStr := strings.TrimPrefix(key, keyPrefix+"state:")
		if liveIDs[idStr] {
			continue
		}
		if id, err := uuid.Parse(idStr); err == nil {
			result.OrphanedInRedis = append(result.OrphanedInRedis, id)
		}
	}

	result.ToAdd = len(result.MissingInRedis)
	result.ToUpdate = len(result.OutdatedInRedis)
	result.ToRemove = len(result.OrphanedInRedis)
	result.IsConsistent = result.ToAdd == 0 && result.ToUpdate == 0 && result.ToRemove == 0

	if !dryRun {
		for _, id := range append(append([]uuid.UUID{}, result.MissingInRedis...), result.OutdatedInRedis...) {
			c, err := e.repo.FindByID(ctx, id)
			if err != nil {
				log.Printf("index: verify: reload %s for apply failed: %v", id, err)
				continue
			}
			e.AddOrUpdate(ctx, c)
		}
		for _, id := range result.OrphanedInRedis {
			e.Remove(ctx, id)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}
