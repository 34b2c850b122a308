package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/kvs"
)

func newScenarioEngine(t *testing.T) (*Engine, docstore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := kvs.NewRedisStore(client)
	doc := docstore.NewMemoryStore()
	engine := New(store, doc, imgproc.NewProcessor(), FileThumbnailSource{}, DefaultThumbnailSettings())
	return engine, doc
}

func seedCollection(t *testing.T, doc docstore.Store, name string, updatedAt time.Time) *catalog.Collection {
	t.Helper()
	c, err := catalog.NewCollection(nil, name, "/library/"+name, catalog.TypeFolder)
	require.NoError(t, err)

	d := catalog.Reconstruct(
		c.ID(), c.LibraryID(), c.Name(), c.Description(), c.Path(), c.Type(),
		c.IsActive(), c.IsDeleted(), c.Statistics(), c.Metadata(), c.SearchIndex(),
		c.Images(), c.Thumbnails(), c.CacheImages(), updatedAt, updatedAt,
	)
	require.NoError(t, catalog.NewRepository(doc).Save(context.Background(), d))
	return d
}

// S1: rebuild from a clean store produces correct stats:total and
// navigation ordering under updatedAt desc.
func TestScenario_S1_RebuildFullProducesNavigation(t *testing.T) {
	ctx := context.Background()
	engine, doc := newScenarioEngine(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := seedCollection(t, doc, "A", base)
	b := seedCollection(t, doc, "B", base.Add(time.Minute))
	c := seedCollection(t, doc, "C", base.Add(2*time.Minute))

	stats, err := engine.RebuildIndex(ctx, ModeFull, RebuildOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 3, stats.Rebuilt)

	nav, err := engine.GetNavigation(ctx, b.ID(), FieldUpdatedAt, Desc)
	require.NoError(t, err)
	require.NotNil(t, nav.PrevID)
	require.NotNil(t, nav.NextID)
	require.Equal(t, c.ID(), *nav.PrevID)
	require.Equal(t, a.ID(), *nav.NextID)
	require.Equal(t, 2, nav.CurrentPosition)
	require.Equal(t, 3, nav.Total)
}

// S2: mutating a collection in DocStore without calling AddOrUpdate leaves
// the index outdated; dry-run verify reports it, a real verify fixes it.
func TestScenario_S2_VerifyDetectsAndFixesOutdated(t *testing.T) {
	ctx := context.Background()
	engine, doc := newScenarioEngine(t)
	repo := catalog.NewRepository(doc)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = seedCollection(t, doc, "A", base)
	b := seedCollection(t, doc, "B", base.Add(time.Minute))
	_ = seedCollection(t, doc, "C", base.Add(2*time.Minute))

	_, err := engine.RebuildIndex(ctx, ModeFull, RebuildOptions{})
	require.NoError(t, err)

	mutated := catalog.Reconstruct(
		b.ID(), b.LibraryID(), b.Name(), b.Description(), b.Path(), b.Type(),
		b.IsActive(), b.IsDeleted(), b.Statistics(), b.Metadata(), b.SearchIndex(),
		b.Images(), b.Thumbnails(), b.CacheImages(), b.CreatedAt(), base.Add(5*time.Minute),
	)
	require.NoError(t, repo.Save(ctx, mutated))

	dry, err := engine.VerifyIndex(ctx, true)
	require.NoError(t, err)
	require.Len(t, dry.OutdatedInRedis, 1)
	require.Equal(t, b.ID(), dry.OutdatedInRedis[0])
	require.Equal(t, 1, dry.ToUpdate)
	require.False(t, dry.IsConsistent)

	applied, err := engine.VerifyIndex(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, applied.ToUpdate)

	after, err := engine.VerifyIndex(ctx, true)
	require.NoError(t, err)
	require.True(t, after.IsConsistent)
}

// S3: soft-deleting a collection in DocStore and running a real verify
// removes it from the index but leaves its thumbnail cache entry alone.
func TestScenario_S3_VerifyRemovesSoftDeletedCollection(t *testing.T) {
	ctx := context.Background()
	engine, doc := newScenarioEngine(t)
	repo := catalog.NewRepository(doc)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := seedCollection(t, doc, "A", base)
	_ = seedCollection(t, doc, "B", base.Add(time.Minute))

	_, err := engine.RebuildIndex(ctx, ModeFull, RebuildOptions{})
	require.NoError(t, err)

	require.NoError(t, engine.SetCachedThumbnail(ctx, a.ID(), []byte("thumbnail-bytes"), "jpeg"))

	deleted := catalog.Reconstruct(
		a.ID(), a.LibraryID(), a.Name(), a.Description(), a.Path(), a.Type(),
		a.IsActive(), true, a.Statistics(), a.Metadata(), a.SearchIndex(),
		a.Images(), a.Thumbnails(), a.CacheImages(), a.CreatedAt(), a.UpdatedAt(),
	)
	require.NoError(t, repo.Save(ctx, deleted))

	result, err := engine.VerifyIndex(ctx, false)
	require.NoError(t, err)
	require.Contains(t, result.OrphanedInRedis, a.ID())

	_, found, err := engine.kv.ZRank(ctx, sortedKey(FieldUpdatedAt, Desc), a.ID().String(), false)
	require.NoError(t, err)
	require.False(t, found)

	_, err = engine.kv.Get(ctx, summaryKey(a.ID().String()))
	require.Error(t, err)
	_, err = engine.kv.Get(ctx, stateKey(a.ID().String()))
	require.Error(t, err)

	cached, err := engine.GetCachedThumbnail(ctx, a.ID())
	require.NoError(t, err)
	require.Equal(t, []byte("thumbnail-bytes"), cached)
}

// S5: getSiblings with page=1 against a large set substitutes the page
// that actually contains the requested collection.
func TestScenario_S5_GetSiblingsSubstitutesContainingPage(t *testing.T) {
	ctx := context.Background()
	engine, doc := newScenarioEngine(t)

	const total = 30000
	const targetRank = 24423 // 0-based; names sort ascending by the seeded suffix
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var target *catalog.Collection
	for i := 0; i < total; i++ {
		c := seedCollection(t, doc, namedRank(i), base.Add(time.Duration(i)*time.Second))
		if i == targetRank {
			target = c
		}
	}
	require.NotNil(t, target)

	_, err := engine.RebuildIndex(ctx, ModeFull, RebuildOptions{})
	require.NoError(t, err)

	page, err := engine.GetSiblings(ctx, target.ID(), 1, 20, FieldCreatedAt, Asc)
	require.NoError(t, err)
	require.Equal(t, 1222, page.CurrentPage)
	require.Equal(t, targetRank+1, page.CurrentPosition)
	require.Equal(t, total, page.Total)
}

// namedRank produces a name whose lexical order matches i, so seeding order
// and createdAt order and name order all agree for the S5 rank math above.
func namedRank(i int) string {
	digits := "0123456789"
	out := make([]byte, 6)
	for pos := 5; pos >= 0; pos-- {
		out[pos] = digits[i%10]
		i /= 10
	}
	return "item-" + string(out)
}

// S6: a concurrent GetPage call sees an internally consistent snapshot
// even while AddOrUpdate races against it.
func TestScenario_S6_ConcurrentGetPageIsInternallyConsistent(t *testing.T) {
	ctx := context.Background()
	engine, doc := newScenarioEngine(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		seedCollection(t, doc, namedRank(i), base.Add(time.Duration(i)*time.Second))
	}
	_, err := engine.RebuildIndex(ctx, ModeFull, RebuildOptions{})
	require.NoError(t, err)

	d, err := catalog.NewCollection(nil, "item-new", "/library/item-new", catalog.TypeFolder)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var page Page
	var pageErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		page, pageErr = engine.GetPage(ctx, 1, 50, FieldUpdatedAt, Desc)
	}()
	go func() {
		defer wg.Done()
		engine.AddOrUpdate(ctx, d)
	}()
	wg.Wait()

	require.NoError(t, pageErr)
	ids := make(map[uuid.UUID]bool, len(page.Items))
	for _, item := range page.Items {
		require.False(t, ids[item.ID], "duplicate id in a single page snapshot")
		ids[item.ID] = true
	}
}
