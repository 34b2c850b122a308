package collections

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/index"
	"github.com/collectionvault/index-engine/internal/kvs"
)

func newTestHandler(t *testing.T) (*Handler, *index.Engine, docstore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	doc := docstore.NewMemoryStore()
	kv := kvs.NewRedisStore(client)
	engine := index.New(kv, doc, imgproc.NewProcessor(), index.FileThumbnailSource{}, index.DefaultThumbnailSettings())
	return NewHandler(engine), engine, doc
}

func seedAndIndex(t *testing.T, engine *index.Engine, doc docstore.Store, name string, libraryID *uuid.UUID) *catalog.Collection {
	t.Helper()
	c, err := catalog.NewCollection(libraryID, name, "/library/"+name, catalog.TypeFolder)
	require.NoError(t, err)
	require.NoError(t, catalog.NewRepository(doc).Save(context.Background(), c))
	engine.AddOrUpdate(context.Background(), c)
	return c
}

func TestHandler_GetPage_ListsIndexedCollections(t *testing.T) {
	h, engine, doc := newTestHandler(t)
	seedAndIndex(t, engine, doc, "Alpha", nil)
	seedAndIndex(t, engine, doc, "Beta", nil)

	out, err := h.GetPage(context.Background(), &PageInput{pageQuery{Page: 1, Size: 20, SortField: "name", SortDir: "asc"}})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Body.Total)
	require.Len(t, out.Body.Items, 2)
	assert.Equal(t, "Alpha", out.Body.Items[0].Name)
}

func TestHandler_Search_MatchesSubstring(t *testing.T) {
	h, engine, doc := newTestHandler(t)
	seedAndIndex(t, engine, doc, "Widgets", nil)
	seedAndIndex(t, engine, doc, "Gadgets", nil)

	out, err := h.Search(context.Background(), &SearchInput{pageQuery: pageQuery{Page: 1, Size: 20, SortField: "name", SortDir: "asc"}, Query: "widg"})

	require.NoError(t, err)
	require.Len(t, out.Body.Items, 1)
	assert.Equal(t, "Widgets", out.Body.Items[0].Name)
}

func TestHandler_GetByLibrary_FiltersToOneLibrary(t *testing.T) {
	h, engine, doc := newTestHandler(t)
	libraryID := uuid.New()
	otherLibrary := uuid.New()
	seedAndIndex(t, engine, doc, "InLibrary", &libraryID)
	seedAndIndex(t, engine, doc, "Elsewhere", &otherLibrary)

	out, err := h.GetByLibrary(context.Background(), &ByLibraryInput{pageQuery: pageQuery{Page: 1, Size: 20, SortField: "name", SortDir: "asc"}, LibraryID: libraryID})

	require.NoError(t, err)
	require.Len(t, out.Body.Items, 1)
	assert.Equal(t, "InLibrary", out.Body.Items[0].Name)
}

func TestHandler_GetByType_FiltersToFolders(t *testing.T) {
	h, engine, doc := newTestHandler(t)
	seedAndIndex(t, engine, doc, "FolderOne", nil)

	out, err := h.GetByType(context.Background(), &ByTypeInput{pageQuery: pageQuery{Page: 1, Size: 20, SortField: "name", SortDir: "asc"}, Type: "Folder"})

	require.NoError(t, err)
	require.Len(t, out.Body.Items, 1)
	assert.Equal(t, "FolderOne", out.Body.Items[0].Name)
}

func TestHandler_GetNavigation_ReturnsNotFoundForUnknownID(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, err := h.GetNavigation(context.Background(), &NavigationInput{ID: uuid.New(), SortField: "updatedAt", SortDir: "desc"})

	assert.Error(t, err)
}

func TestHandler_GetSiblings_ReturnsAWindowAroundTheCollection(t *testing.T) {
	h, engine, doc := newTestHandler(t)
	a := seedAndIndex(t, engine, doc, "Alpha", nil)
	seedAndIndex(t, engine, doc, "Beta", nil)
	seedAndIndex(t, engine, doc, "Gamma", nil)

	out, err := h.GetSiblings(context.Background(), &SiblingsInput{pageQuery: pageQuery{Page: 1, Size: 20, SortField: "name", SortDir: "asc"}, ID: a.ID()})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Body.Siblings)
}

func TestHandler_GetThumbnail_ReturnsNotFoundWhenUncached(t *testing.T) {
	h, engine, doc := newTestHandler(t)
	c := seedAndIndex(t, engine, doc, "Alpha", nil)

	_, err := h.GetThumbnail(context.Background(), &ThumbnailInput{ID: c.ID()})

	assert.Error(t, err)
}

func TestHandler_GetThumbnail_ReturnsCachedBytes(t *testing.T) {
	h, engine, doc := newTestHandler(t)
	c := seedAndIndex(t, engine, doc, "Alpha", nil)
	require.NoError(t, engine.SetCachedThumbnail(context.Background(), c.ID(), []byte("jpeg-bytes"), "jpeg"))

	out, err := h.GetThumbnail(context.Background(), &ThumbnailInput{ID: c.ID()})

	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), out.Body)
}
