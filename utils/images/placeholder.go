package images

import (
	_ "embed"
	"sync"
)

//go:embed placeholder.svg
var placeholderSVG []byte

var placeholder = sync.OnceValues(func() (*Picture, error) {
	img, err := RasterizeSVG(placeholderSVG, 0, 0)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
})

// Placeholder returns picture substituted for images which could not be
// obtained or decoded. It is rendered once, callers must not modify Data.
func Placeholder() (*Picture, error) {
	return placeholder()
}
