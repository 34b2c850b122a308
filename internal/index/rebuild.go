package index

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/collectionvault/index-engine/internal/catalog"
)

const (
	rebuildBatchSize  = 100
	readinessWaitStep = 200 * time.Millisecond
	readinessTimeout  = 10 * time.Second
	flushThreshold    = 100 // DocStore count below which a 10x KVS key blowup triggers a FLUSH safety valve
	flushMultiplier   = 10
)

// RebuildIndex rebuilds (or, for ModeVerify, delegates to VerifyIndex) the
// full derived index per the documented seven-step algorithm. A KVS that
// is still not ready after readinessTimeout aborts the rebuild with a nil
// error; failures to count, clear or list collections are returned as
// errors. A per-collection KVS write failure is logged and swallowed by
// AddOrUpdate, and that collection is still counted as rebuilt.
func (e *Engine) RebuildIndex(ctx context.Context, mode RebuildMode, opts RebuildOptions) (RebuildStatistics, error) {
	start := time.Now()

	if mode == ModeVerify {
		result, err := e.VerifyIndex(ctx, opts.DryRun)
		if err != nil {
			return RebuildStatistics{}, err
		}
		return RebuildStatistics{
			Total:    result.ToAdd + result.ToUpdate + result.ToRemove,
			Rebuilt:  result.ToAdd + result.ToUpdate,
			Duration: result.Duration,
		}, nil
	}

	if !e.waitForReady(ctx) {
		log.Printf("index: rebuild aborted, kvs not ready after %s", readinessTimeout)
		return RebuildStatistics{Duration: time.Since(start)}, nil
	}

	total, err := e.repo.Count(ctx)
	if err != nil {
		return RebuildStatistics{}, fmt.Errorf("count collections: %w", err)
	}

	if err := e.clear(ctx, mode, total); err != nil {
		return RebuildStatistics{}, fmt.Errorf("clear kvs: %w", err)
	}

	stats := RebuildStatistics{Total: int(total)}

	var skip int64
	for {
		batch, err := e.repo.ListAll(ctx, skip, rebuildBatchSize)
		if err != nil {
			return stats, fmt.Errorf("list collections: %w", err)
		}
		fetched := len(batch)
		if fetched == 0 {
			break
		}

		for _, c := range batch {
			if mode == ModeChangedOnly && e.skipUnchanged(ctx, c) {
				stats.Skipped++
				continue
			}
			if !opts.DryRun {
				e.AddOrUpdate(ctx, c)
			}
			stats.Rebuilt++
		}

		batch = nil
		runtime.GC()
		debug.FreeOSMemory()

		skip += int64(fetched)
		if fetched < rebuildBatchSize {
			break
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats.PeakMem = mem.Sys

	if !opts.DryRun {
		now := time.Now()
		if err := e.kv.Set(ctx, keyLastRebuild, now.Format(time.RFC3339), 0); err != nil {
			log.Printf("index: rebuild: write last_rebuild failed: %v", err)
		}
		if err := e.kv.Set(ctx, keyStatsTotal, strconv.FormatInt(total, 10), 0); err != nil {
			log.Printf("index: rebuild: write stats:total failed: %v", err)
		}

		if err := e.rebuildDashboardStats(ctx); err != nil {
			log.Printf("index: rebuild: dashboard stats pass failed: %v", err)
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// waitForReady polls the KVS for up to readinessTimeout.
func (e *Engine) waitForReady(ctx context.Context) bool {
	deadline := time.Now().Add(readinessTimeout)
	for {
		if e.ready(ctx) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(readinessWaitStep):
		}
	}
}

// clear decides and applies the clearing strategy: Full always clears;
// ChangedOnly clears nothing, so the state records its skip rule reads
// survive; otherwise a DocStore count below flushThreshold with a KVS key
// count more than flushMultiplier times larger triggers a full FLUSH as a
// stale-data safety valve; otherwise a scan-delete of the sorted:/data:/
// state: prefixes runs, leaving thumb: untouched.
func (e *Engine) clear(ctx context.Context, mode RebuildMode, docStoreTotal int64) error {
	if mode == ModeFull {
		return e.kv.FlushDB(ctx)
	}
	if mode == ModeChangedOnly {
		return nil
	}

	kvsSize, err := e.kv.DBSize(ctx)
	if err != nil {
		return err
	}
	if docStoreTotal < flushThreshold && kvsSize > docStoreTotal*flushMultiplier {
		log.Printf("index: rebuild: flushing kvs (docstore=%d, kvs keys=%d)", docStoreTotal, kvsSize)
		return e.kv.FlushDB(ctx)
	}

	for _, prefix := range scanPrefixes {
		keys, err := e.kv.ScanPrefix(ctx, prefix)
		if err != nil {
			return err
		}
		if err := e.kv.Del(ctx, keys...); err != nil {
			return err
		}
	}
	return nil
}

// skipUnchanged implements the ChangedOnly skip rule: a collection is
// skipped only if an index state record exists, it was indexed at or
// after the collection's last update, and no new first thumbnail has
// appeared since the state was recorded.
func (e *Engine) skipUnchanged(ctx context.Context, c *catalog.Collection) bool {
	raw, err := e.kv.Get(ctx, stateKey(c.ID().String()))
	if err != nil {
		return false
	}
	state, err := decodeState(raw)
	if err != nil {
		return false
	}
	if state.IsStale(c.UpdatedAt()) {
		return false
	}

	thumbs := c.Thumbnails()
	newFirstThumbnail := len(thumbs) > 0 && !state.HasFirstThumbnail
	if newFirstThumbnail {
		return false
	}
	if len(thumbs) > 0 && state.HasFirstThumbnail && state.FirstThumbnailPath != nil && thumbs[0].ThumbnailPath != nil &&
		*state.FirstThumbnailPath != *thumbs[0].ThumbnailPath {
		return false
	}

	return true
}
