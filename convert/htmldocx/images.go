package htmldocx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/url"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"h2docx/css"
	"h2docx/docx"
	"h2docx/utils/images"
)

// requestDPI is used to convert explicitly requested pixel sizes.
const requestDPI = 72

// errUnresolvable means there is nowhere to get image from, such images are
// replaced with text.
var errUnresolvable = errors.New("image reference cannot be resolved")

// image inserts picture as its own paragraph. Any failure to get or decode
// image data results in placeholder picture. Text following the picture
// inside the same element goes to paragraph with the same properties.
func (e *engine) image(attrs map[string]string) error {
	if !e.opts.Images {
		return nil
	}
	src := strings.TrimSpace(attrs["src"])
	if src == "" {
		return e.imageText("<image>")
	}

	pic, err := e.loadImage(src)
	if errors.Is(err, errUnresolvable) {
		e.log.Warn("Image not found, using text", zap.String("src", src), zap.Error(err))
		return e.imageText(fmt.Sprintf("<image: %s>", referenceName(src)))
	}
	if err != nil {
		e.log.Warn("Unable to get image, using placeholder", zap.String("src", shorten(src)), zap.Error(err))
		if pic, err = images.Placeholder(); err != nil {
			return fmt.Errorf("unable to prepare placeholder image: %w", err)
		}
	}

	w, h := placement(pic, requestedSize(attrs["width"]), requestedSize(attrs["height"]))
	p, err := e.target.AddParagraph("")
	if err != nil {
		return err
	}
	if err := p.AddRun("").AddPicture(pic.Data, w, h); err != nil {
		return fmt.Errorf("unable to add picture: %w", err)
	}
	e.interruptParagraph()
	return nil
}

func (e *engine) imageText(text string) error {
	p, err := e.target.AddParagraph("")
	if err != nil {
		return err
	}
	p.AddRun(text)
	e.interruptParagraph()
	return nil
}

func (e *engine) loadImage(src string) (*images.Picture, error) {
	data, err := e.imageData(src)
	if err != nil {
		return nil, err
	}
	return images.Normalize(data)
}

// imageData resolves reference: data URI, absolute URL, or reference
// relative to the conversion base.
func (e *engine) imageData(src string) ([]byte, error) {
	if strings.HasPrefix(strings.ToLower(src), "data:") {
		return decodeDataURI(src)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnresolvable, err)
	}
	if isRemote(ref) {
		return e.fetch(ref.String())
	}
	if ref.IsAbs() {
		return nil, errUnresolvable
	}

	base := e.opts.Base
	baseURL, err := url.Parse(base)
	remoteBase := base != "" && err == nil && isRemote(baseURL)
	if ref.Host != "" {
		// network path reference never points to local file
		if remoteBase {
			return e.fetch(baseURL.ResolveReference(ref).String())
		}
		ref.Scheme = "https"
		return e.fetch(ref.String())
	}
	if base == "" || ref.Path == "" {
		return nil, errUnresolvable
	}
	if remoteBase {
		return e.fetch(baseURL.ResolveReference(ref).String())
	}
	return readConfined(base, ref.Path)
}

func isRemote(u *url.URL) bool {
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (e *engine) fetch(u string) ([]byte, error) {
	if e.conv.fetcher == nil {
		return nil, errors.New("remote images are not available")
	}
	return e.conv.fetcher.Get(e.ctx, u)
}

// readConfined reads file which must be inside of dir.
func readConfined(dir, name string) ([]byte, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnresolvable, err)
	}
	defer root.Close()

	data, err := root.ReadFile(strings.TrimPrefix(path.Clean("/"+name), "/"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", errUnresolvable, err)
		}
		return nil, err
	}
	return data, nil
}

// decodeDataURI supports base64 and percent encoded payloads.
func decodeDataURI(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if strings.HasSuffix(strings.ToLower(header), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if isHTMLSpace(r) {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
				return nil, fmt.Errorf("malformed base64 payload: %w", err)
			}
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI payload: %w", err)
	}
	return []byte(data), nil
}

// referenceName is the reference itself for URLs and file name otherwise.
func referenceName(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	if isRemote(u) {
		return src
	}
	if name := path.Base(u.Path); name != "." && name != "/" {
		return name
	}
	return src
}

func shorten(src string) string {
	const limit = 64
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}

// requestedSize parses width/height attribute in pixels, 0 when absent or
// using other units.
func requestedSize(attr string) float64 {
	v := css.ParseValue(attr)
	if !v.IsNumeric() || (v.Unit != "" && v.Unit != "px") || v.Value <= 0 {
		return 0
	}
	return v.Value
}

// placement computes picture extent: natural size when nothing is
// requested, requested pixels at fixed resolution otherwise, keeping aspect
// ratio for missing dimension. Result fits usable page area.
func placement(pic *images.Picture, reqW, reqH float64) (docx.Length, docx.Length) {
	natW := docx.Pixels(float64(pic.Width), pic.DPIX)
	natH := docx.Pixels(float64(pic.Height), pic.DPIY)

	var w, h docx.Length
	switch {
	case reqW <= 0 && reqH <= 0:
		w, h = natW, natH
	case reqH <= 0:
		w = docx.Pixels(reqW, requestDPI)
		h = scale(natH, w, natW)
	case reqW <= 0:
		h = docx.Pixels(reqH, requestDPI)
		w = scale(natW, h, natH)
	default:
		w, h = docx.Pixels(reqW, requestDPI), docx.Pixels(reqH, requestDPI)
	}
	return fitPage(w, h)
}

func fitPage(w, h docx.Length) (docx.Length, docx.Length) {
	if w > docx.UsableWidth {
		w, h = docx.UsableWidth, scale(h, docx.UsableWidth, w)
		if h > docx.UsableHeight {
			w, h = scale(w, docx.UsableHeight, h), docx.UsableHeight
		}
		return w, h
	}
	if h > docx.UsableHeight {
		w, h = scale(w, docx.UsableHeight, h), docx.UsableHeight
		if w > docx.UsableWidth {
			w, h = docx.UsableWidth, scale(h, docx.UsableWidth, w)
		}
	}
	return w, h
}

// scale returns v*num/den.
func scale(v, num, den docx.Length) docx.Length {
	if den == 0 {
		return v
	}
	return docx.Length(math.Round(float64(v) * float64(num) / float64(den)))
}
