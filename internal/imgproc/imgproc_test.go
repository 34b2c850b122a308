package imgproc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDefaultProcessor_DecodeAndDimensions(t *testing.T) {
	p := NewProcessor()
	data := makeTestPNG(t, 200, 100)

	img, err := p.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	w, h := p.Dimensions(img)
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestDefaultProcessor_DecodeCorrupted(t *testing.T) {
	p := NewProcessor()
	_, err := p.Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestDefaultProcessor_ResizePreservesAspectRatio(t *testing.T) {
	p := NewProcessor()
	data := makeTestPNG(t, 800, 400)
	img, err := p.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	resized := p.Resize(img, 400, 400)
	w, h := p.Dimensions(resized)
	assert.Equal(t, 400, w)
	assert.Equal(t, 200, h)
}

func TestDefaultProcessor_EncodeFormats(t *testing.T) {
	p := NewProcessor()
	data := makeTestPNG(t, 64, 64)
	img, err := p.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	for _, format := range []Format{FormatJPEG, FormatPNG, FormatBMP} {
		var buf bytes.Buffer
		err := p.Encode(&buf, img, format, 85)
		require.NoError(t, err, "format %s", format)
		assert.NotEmpty(t, buf.Bytes())
	}
}

func TestDefaultProcessor_EncodeUnknownFormat(t *testing.T) {
	p := NewProcessor()
	data := makeTestPNG(t, 16, 16)
	img, err := p.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = p.Encode(&buf, img, Format("tiff"), 85)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMimeForFormat(t *testing.T) {
	cases := map[string]string{
		"jpg":     "image/jpeg",
		"jpeg":    "image/jpeg",
		"png":     "image/png",
		"webp":    "image/webp",
		"gif":     "image/gif",
		"bmp":     "image/bmp",
		"unknown": "image/jpeg",
	}
	for format, want := range cases {
		assert.Equal(t, want, MimeForFormat(format), "format %s", format)
	}
}
