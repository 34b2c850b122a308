package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectionvault/index-engine/internal/catalog"
)

func newTestCollection(t *testing.T, name string) *catalog.Collection {
	t.Helper()
	c, err := catalog.NewCollection(nil, name, "/library/"+name, catalog.TypeFolder)
	require.NoError(t, err)
	return c
}

func TestScore_NameOrderingIsCaseInsensitive(t *testing.T) {
	alpha := newTestCollection(t, "Alpha")
	alpha2 := newTestCollection(t, "alpha2")
	beta := newTestCollection(t, "beta")

	assert.Less(t, Score(alpha, FieldName, Asc), Score(alpha2, FieldName, Asc))
	assert.Less(t, Score(alpha2, FieldName, Asc), Score(beta, FieldName, Asc))
}

func TestScore_NameDescendingNegatesAscending(t *testing.T) {
	c := newTestCollection(t, "widgets")
	assert.Equal(t, -Score(c, FieldName, Asc), Score(c, FieldName, Desc))
}

func TestScore_UpdatedAtOrderingMatchesTime(t *testing.T) {
	earlier := newTestCollection(t, "earlier")
	later := newTestCollection(t, "later")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := catalog.Reconstruct(earlier.ID(), nil, earlier.Name(), nil, earlier.Path(), earlier.Type(),
		true, false, earlier.Statistics(), earlier.Metadata(), earlier.SearchIndex(),
		nil, nil, nil, base, base)
	l := catalog.Reconstruct(later.ID(), nil, later.Name(), nil, later.Path(), later.Type(),
		true, false, later.Statistics(), later.Metadata(), later.SearchIndex(),
		nil, nil, nil, base, base.Add(time.Hour))

	assert.Less(t, Score(e, FieldUpdatedAt, Asc), Score(l, FieldUpdatedAt, Asc))
	assert.Greater(t, Score(e, FieldUpdatedAt, Desc), Score(l, FieldUpdatedAt, Desc))
}

func TestScore_ImageCountAndTotalSizeUseStatistics(t *testing.T) {
	c := newTestCollection(t, "counted")
	c.SetImages([]catalog.ImageEntry{
		{ID: c.ID(), Filename: "a.jpg", FileSize: 100},
		{ID: c.ID(), Filename: "b.jpg", FileSize: 200},
	})

	assert.Equal(t, float64(2), Score(c, FieldImageCount, Asc))
	assert.Equal(t, float64(300), Score(c, FieldTotalSize, Asc))
	assert.Equal(t, float64(-2), Score(c, FieldImageCount, Desc))
}

func TestNameScore_ShorterNamesZeroPadWithinFirstTenChars(t *testing.T) {
	short := nameScore("ab")
	longer := nameScore("ab0000000")
	assert.Less(t, short, longer)
}
