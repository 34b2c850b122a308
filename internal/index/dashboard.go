package index

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

const dashboardTTL = 5 * time.Minute

// CacheFolderUsage summarizes one cache folder's footprint for the
// dashboard.
type CacheFolderUsage struct {
	FolderID   uuid.UUID `json:"folderId"`
	Name       string    `json:"name"`
	UsedBytes  int64     `json:"usedBytes"`
	MaxBytes   int64     `json:"maxBytes"`
	FileCount  int       `json:"fileCount"`
}

// TopViewedCollection is one entry of the dashboard's top-N-by-views list.
type TopViewedCollection struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	TotalViews int64     `json:"totalViews"`
}

// SystemHealth is a point-in-time snapshot of the stores the dashboard
// depends on.
type SystemHealth struct {
	KVSReady   bool `json:"kvsReady"`
	DocStoreOK bool `json:"docStoreOk"`
}

// DashboardStatistics is the aggregated view served to the viewer's
// landing page, rebuilt by a streaming second pass after every rebuild.
type DashboardStatistics struct {
	TotalCollections int                    `json:"totalCollections"`
	TotalImages      int                    `json:"totalImages"`
	TotalSizeBytes   int64                  `json:"totalSizeBytes"`
	TopViewed        []TopViewedCollection  `json:"topViewed"`
	CacheFolders     []CacheFolderUsage     `json:"cacheFolders"`
	Health           SystemHealth           `json:"health"`
	GeneratedAt      time.Time              `json:"generatedAt"`
}

const topViewedLimit = 10

// rebuildDashboardStats streams over DocStore in rebuild-sized batches
// (never loading the full collection set at once) to compute totals and a
// top-N-by-views list, then stores the result with the 5-minute TTL.
func (e *Engine) rebuildDashboardStats(ctx context.Context) error {
	stats := DashboardStatistics{
		Health: SystemHealth{KVSReady: e.ready(ctx), DocStoreOK: true},
	}

	var skip int64
	var top []TopViewedCollection
	for {
		batch, err := e.repo.ListAll(ctx, skip, rebuildBatchSize)
		if err != nil {
			stats.Health.DocStoreOK = false
			return err
		}
		if len(batch) == 0 {
			break
		}

		for _, c := range batch {
			stats.TotalCollections++
			s := c.Statistics()
			stats.TotalImages += s.TotalItems
			stats.TotalSizeBytes += s.TotalSize
			top = append(top, TopViewedCollection{ID: c.ID(), Name: c.Name(), TotalViews: s.TotalViews})
		}

		skip += int64(len(batch))
		if len(batch) < rebuildBatchSize {
			break
		}
	}

	sort.Slice(top, func(i, j int) bool { return top[i].TotalViews > top[j].TotalViews })
	if len(top) > topViewedLimit {
		top = top[:topViewedLimit]
	}
	stats.TopViewed = top
	stats.GeneratedAt = time.Now()

	return e.StoreDashboardStats(ctx, stats)
}

func (e *Engine) StoreDashboardStats(ctx context.Context, stats DashboardStatistics) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return e.kv.Set(ctx, keyDashboardStats, string(raw), dashboardTTL)
}

// GetDashboardStats reads the cached statistics. The bool return reports
// freshness (isFresh): a cache miss means the caller should trigger a
// rebuild pass rather than serve stale data.
func (e *Engine) GetDashboardStats(ctx context.Context) (DashboardStatistics, bool) {
	raw, err := e.kv.Get(ctx, keyDashboardStats)
	if err != nil {
		return DashboardStatistics{}, false
	}
	var stats DashboardStatistics
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		log.Printf("index: dashboard: decode cached stats failed: %v", err)
		return DashboardStatistics{}, false
	}
	return stats, true
}

// IsDashboardFresh reports whether a cached dashboard snapshot currently
// exists (the 5-minute TTL is enforced by the KVS itself; once the key
// expires this reports false without an extra timestamp comparison).
func (e *Engine) IsDashboardFresh(ctx context.Context) bool {
	_, fresh := e.GetDashboardStats(ctx)
	return fresh
}

// recordActivity appends an entry to the bounded (max 100) dashboard
// activity list, evicting the oldest entry once full.
func (e *Engine) recordActivity(ctx context.Context, entry string) {
	const maxActivity = 100

	raw, err := e.kv.Get(ctx, keyDashboardActivity)
	var entries []string
	if err == nil {
		_ = json.Unmarshal([]byte(raw), &entries)
	}

	entries = append(entries, entry)
	if len(entries) > maxActivity {
		entries = entries[len(entries)-maxActivity:]
	}

	encoded, err := json.Marshal(entries)
	if err != nil {
		log.Printf("index: dashboard: encode activity failed: %v", err)
		return
	}
	if err := e.kv.Set(ctx, keyDashboardActivity, string(encoded), dashboardTTL); err != nil {
		log.Printf("index: dashboard: write activity failed: %v", err)
	}
}

// UpdateIncrement is called after an AddOrUpdate/Remove mutation to keep
// the dashboard's activity feed current without forcing a full rebuild
// pass; totals remain only as fresh as the last rebuildDashboardStats.
func (e *Engine) UpdateIncrement(ctx context.Context, description string) {
	e.recordActivity(ctx, description)
}
