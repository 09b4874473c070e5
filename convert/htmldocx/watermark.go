package htmldocx

import (
	"fmt"
	"strconv"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"h2docx/docx"
)

const (
	watermarkFont  = "Arial"
	watermarkColor = "808080"
)

var watermarkSize = docx.Pt(36)

// applyWatermark puts text of the last marked div into footer replacing its
// content. Document is only modified in memory.
func (e *engine) applyWatermark(root *html.Node) error {
	marker := e.opts.WatermarkMarker
	if marker == "" {
		return nil
	}
	sel, err := cascadia.Compile("div[id*=" + strconv.Quote(marker) + "]")
	if err != nil {
		return fmt.Errorf("unable to use watermark marker %q: %w", marker, err)
	}
	matches := sel.MatchAll(root)
	if len(matches) == 0 {
		return nil
	}

	text := normalizeSpace(textContent(matches[len(matches)-1]))
	if text == "" {
		e.log.Debug("Watermark container is empty", zap.Int("matches", len(matches)))
		return nil
	}

	footer, err := e.doc.Footer(0)
	if err != nil {
		return err
	}
	p := footer.Clear()
	p.SetAlignment(docx.AlignCenter)
	r := p.AddRun(text)
	r.SetFont(watermarkFont)
	r.SetSize(watermarkSize)
	r.SetColor(watermarkColor)

	e.log.Debug("Watermark applied", zap.String("text", text), zap.Int("matches", len(matches)))
	return nil
}
