package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	c, _ := NewCollection(nil, "Beach Trip", "/vault/beach", TypeFolder)
	c.SetTags([]string{"beach", "2025"})
	c.SetImages([]ImageEntry{
		{ID: uuid.New(), Filename: "1.jpg", RelativePath: "1.jpg", FileSize: 10},
		{ID: uuid.New(), Filename: "2.jpg", RelativePath: "2.jpg", FileSize: 20},
	})
	b64 := "data:image/jpeg;base64,AAAA"

	summary := BuildSummary(c, &b64)

	assert.Equal(t, c.ID(), summary.ID)
	assert.Equal(t, 2, summary.ImageCount)
	assert.Equal(t, int64(30), summary.TotalSize)
	require.NotNil(t, summary.FirstImageID)
	assert.Equal(t, c.Images()[0].ID, *summary.FirstImageID)
	assert.Equal(t, []string{"beach", "2025"}, summary.Tags)
	require.NotNil(t, summary.ThumbnailBase64)
	assert.Equal(t, b64, *summary.ThumbnailBase64)
}

func TestBuildSummary_NoImagesHasNilFirstImageID(t *testing.T) {
	c, _ := NewCollection(nil, "Empty", "/vault/empty", TypeFolder)

	summary := BuildSummary(c, nil)

	assert.Nil(t, summary.FirstImageID)
	assert.Nil(t, summary.ThumbnailBase64)
}
