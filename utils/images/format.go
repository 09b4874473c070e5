package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for data which is not an image document can
// embed.
var ErrUnsupported = errors.New("unsupported image format")

// Picture is image ready to be embedded.
type Picture struct {
	Data   []byte
	MIME   string
	Width  int // pixels
	Height int
	DPIX   float64
	DPIY   float64
}

// embeddable formats are stored as is.
var embeddable = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// Normalize converts image data to one of embeddable formats, SVG is
// rasterized and WebP is re-encoded as PNG.
func Normalize(data []byte) (*Picture, error) {
	if IsSVG(data) {
		img, err := RasterizeSVG(data, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize svg: %w", err)
		}
		return encodePNG(img)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupported
	}

	switch mime := kind.MIME.Value; {
	case embeddable[mime]:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unable to decode %s: %w", mime, err)
		}
		x, y := Resolution(data)
		return &Picture{Data: data, MIME: mime, Width: cfg.Width, Height: cfg.Height, DPIX: x, DPIY: y}, nil
	case mime == "image/webp":
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unable to decode %s: %w", mime, err)
		}
		return encodePNG(img)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}
}

func encodePNG(img image.Image) (*Picture, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("unable to encode png: %w", err)
	}
	b := img.Bounds()
	return &Picture{
		Data:   buf.Bytes(),
		MIME:   "image/png",
		Width:  b.Dx(),
		Height: b.Dy(),
		DPIX:   DefaultDPI,
		DPIY:   DefaultDPI,
	}, nil
}
