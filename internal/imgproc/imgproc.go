// Package imgproc decodes images (from a file or an archive entry reader),
// reports dimensions, resizes preserving aspect ratio, and encodes to
// JPEG/PNG/WebP/BMP. Video files are handled by extracting a representative
// frame through an external decoder.
package imgproc

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/collectionvault/index-engine/internal/shared"
)

// Format is an output encoding this processor supports.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
)

var (
	ErrInvalidFormat     = fmt.Errorf("%w: invalid image format", shared.ErrInvalidInput)
	ErrInvalidDimensions = fmt.Errorf("%w: invalid image dimensions", shared.ErrInvalidInput)
	ErrCorruptedImage    = errors.New("corrupted image")
)

// Processor is the ImgProc adapter the thumbnail and cache job handlers
// depend on.
type Processor interface {
	// Decode reads and decodes an image from r, which may be a plain file
	// or an archive entry reader; both present the same byte stream.
	Decode(r io.Reader) (image.Image, error)

	// Dimensions reports the pixel size of img.
	Dimensions(img image.Image) (width, height int)

	// Resize scales img to fit within maxWidth x maxHeight, preserving
	// aspect ratio. It never upscales beyond the source size.
	Resize(img image.Image, maxWidth, maxHeight int) image.Image

	// Encode writes img to w in the given format at quality (1-100,
	// ignored for PNG/BMP which are lossless).
	Encode(w io.Writer, img image.Image, format Format, quality int) error
}

// DefaultProcessor is the production Processor built on imaging + go-webp +
// x/image/bmp, generalizing the single-filesystem-path pipeline into one
// that accepts and returns in-memory images so it can process both folder
// entries and archive entries the same way.
type DefaultProcessor struct{}

// NewProcessor returns a stateless DefaultProcessor.
func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{}
}

func (p *DefaultProcessor) Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrInvalidFormat
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptedImage, err)
	}
	return img, nil
}

func (p *DefaultProcessor) Dimensions(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func (p *DefaultProcessor) Resize(img image.Image, maxWidth, maxHeight int) image.Image {
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

func (p *DefaultProcessor) Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	case FormatWebP:
		return p.encodeWebP(w, img, quality)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return ErrInvalidFormat
	}
}

func (p *DefaultProcessor) encodeWebP(w io.Writer, img image.Image, quality int) error {
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
	if err != nil {
		return fmt.Errorf("webp encoder options: %w", err)
	}
	if err := webp.Encode(w, img, opts); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

// MimeForFormat maps a stored thumbnail format code to its data-URL mime
// type. gif maps to image/gif, never image/bmp: the source's historical bug
// where a gif thumbnail was mislabeled as a bitmap is fixed here.
func MimeForFormat(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}
