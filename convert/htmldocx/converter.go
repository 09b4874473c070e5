// Package htmldocx converts HTML markup into WordprocessingML documents.
package htmldocx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"go.uber.org/zap"

	"h2docx/docx"
)

// Options control conversion. Use DefaultOptions to get sensible values,
// zero Options disable most processing.
type Options struct {
	// RepairHTML parses markup with HTML5 parser and walks normalized result.
	// Tables, watermark and document title require it.
	RepairHTML   bool
	Images       bool
	Tables       bool
	InlineStyles bool
	// Named styles, empty means document default.
	TableStyle     string
	ParagraphStyle string
	// Text of the last div which id contains marker goes into page footer.
	WatermarkMarker string
	// Tables nested deeper are rendered as plain text.
	MaxTableDepth int
	// Base is URL or directory relative image references are resolved
	// against.
	Base string
}

func DefaultOptions() Options {
	return Options{
		RepairHTML:      true,
		Images:          true,
		Tables:          true,
		InlineStyles:    true,
		WatermarkMarker: "watermark",
		MaxTableDepth:   8,
	}
}

// Fetcher retrieves remote resources.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Converter holds configuration shared by conversions. It is safe for
// concurrent use, every conversion has its own state.
type Converter struct {
	opts    Options
	fetcher Fetcher
	log     *zap.Logger
}

// New creates converter. Without fetcher remote images are replaced with
// placeholder.
func New(opts Options, fetcher Fetcher, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxTableDepth <= 0 {
		opts.MaxTableDepth = DefaultOptions().MaxTableDepth
	}
	return &Converter{opts: opts, fetcher: fetcher, log: log.Named("htmldocx")}
}

// Options returns converter configuration.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert returns packaged document.
func (c *Converter) Convert(ctx context.Context, markup string) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := c.ConvertTo(ctx, markup, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertTo writes packaged document to w.
func (c *Converter) ConvertTo(ctx context.Context, markup string, w io.Writer) error {
	doc, err := c.ConvertDocument(ctx, markup)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	return nil
}

// ConvertDocument returns in-memory document for further processing.
func (c *Converter) ConvertDocument(ctx context.Context, markup string) (*docx.Document, error) {
	doc := docx.New()
	if err := c.ConvertInto(ctx, markup, doc, nil); err != nil {
		return nil, err
	}
	return doc, nil
}

// ConvertInto adds converted markup to existing document body or, when cell
// is not nil, to the table cell of that document.
func (c *Converter) ConvertInto(ctx context.Context, markup string, doc *docx.Document, cell *docx.Cell) error {
	if doc == nil {
		return fmt.Errorf("%w: no document", docx.ErrInvalidTarget)
	}
	if cell != nil && cell.Document() != doc {
		return fmt.Errorf("%w: cell belongs to another document", docx.ErrInvalidTarget)
	}
	if err := c.checkStyles(doc); err != nil {
		return err
	}
	if cell != nil {
		return c.convertCell(ctx, markup, doc, cell, 0)
	}
	return newEngine(ctx, c, doc, doc, 0).process(markup)
}

func (c *Converter) convertCell(ctx context.Context, markup string, doc *docx.Document, cell *docx.Cell, depth int) error {
	if err := newEngine(ctx, c, doc, cell, depth).process(markup); err != nil {
		return err
	}
	// cell may not be empty
	if len(cell.Paragraphs()) == 0 {
		if _, err := cell.AddParagraph(""); err != nil {
			return err
		}
	}
	return nil
}

// checkStyles fails early when configured styles are not defined.
func (c *Converter) checkStyles(doc *docx.Document) error {
	if s := c.opts.ParagraphStyle; s != "" && !doc.HasParagraphStyle(s) {
		return &docx.StyleError{Name: s}
	}
	if s := c.opts.TableStyle; s != "" && !doc.HasTableStyle(s) {
		return &docx.StyleError{Name: s}
	}
	return nil
}

// repair runs markup through HTML5 parser returning tree and its
// normalized rendering.
func repair(markup string) (*html.Node, string, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, "", fmt.Errorf("unable to parse html: %w", err)
	}
	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return nil, "", fmt.Errorf("unable to render html: %w", err)
	}
	return root, sb.String(), nil
}
