package htmldocx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"go.uber.org/zap"

	"h2docx/css"
	"h2docx/docx"
)

const listIndentStep = 0.5 // inches per nesting level

// engine is single conversion pass over markup writing into target. Cells
// are converted by independent engines.
type engine struct {
	ctx    context.Context
	conv   *Converter
	opts   *Options
	log    *zap.Logger
	doc    *docx.Document
	target docx.Container
	depth  int // table nesting level of target

	stack *contextStack
	skip  skipState

	// tables are expanded only when markup was parsed into tree
	expandTables bool
	tables       []*html.Node
	tableNo      int

	paragraph *docx.Paragraph
	run       *docx.Run
	// paragraph interrupted by picture, inline content following the
	// picture continues with its properties
	resume *docx.Paragraph
}

func newEngine(ctx context.Context, conv *Converter, doc *docx.Document, target docx.Container, depth int) *engine {
	return &engine{
		ctx:    ctx,
		conv:   conv,
		opts:   &conv.opts,
		log:    conv.log,
		doc:    doc,
		target: target,
		depth:  depth,
		stack:  newContextStack(),
	}
}

// topLevel is true when engine writes into document body.
func (e *engine) topLevel() bool {
	_, ok := e.target.(*docx.Document)
	return ok
}

func (e *engine) process(markup string) error {
	var root *html.Node
	if e.opts.RepairHTML {
		var err error
		if root, markup, err = repair(markup); err != nil {
			return err
		}
		if e.opts.Tables {
			e.expandTables = true
			e.tables = discoverTables(root)
		}
	}

	if err := e.walk(markup); err != nil {
		return err
	}

	if root != nil && e.topLevel() {
		if e.doc.Properties.Title == "" {
			e.doc.Properties.Title = documentTitle(root)
		}
		return e.applyWatermark(root)
	}
	return nil
}

func (e *engine) walk(markup string) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("unable to tokenize html: %w", err)
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			if err := e.ctx.Err(); err != nil {
				return err
			}
			tok := z.Token()
			if err := e.openTag(tok); err != nil {
				return err
			}
			if tt == html.SelfClosingTagToken || isVoid(tok.DataAtom) {
				e.closeTag(tok.Data)
			}
		case html.EndTagToken:
			e.closeTag(z.Token().Data)
		case html.TextToken:
			if err := e.text(string(z.Text())); err != nil {
				return err
			}
		}
	}
}

func isVoid(a atom.Atom) bool {
	switch a {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img, atom.Input,
		atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}

// skipped elements never produce document text.
func skipped(tag string) bool {
	switch tag {
	case "head", "script", "style", "template":
		return true
	}
	return false
}

func headingLevel(tag string) (int, bool) {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '9' {
		return int(tag[1] - '0'), true
	}
	return 0, false
}

func (e *engine) openTag(tok html.Token) error {
	tag := tok.Data
	if e.skip.active() {
		e.skip.open(tag)
		return nil
	}
	if skipped(tag) {
		e.skip.enter(tag)
		return nil
	}

	attrs := attrMap(tok.Attr)
	switch tag {
	case "body":
		return nil
	case "span":
		var decls css.Declarations
		if e.opts.InlineStyles {
			decls = css.ParseDeclarations(attrs["style"])
		}
		e.stack.pushSpan(decls)
		return nil
	case "ol":
		e.stack.pushList(listOrdered)
		return nil
	case "ul":
		e.stack.pushList(listUnordered)
		return nil
	case "br":
		return e.lineBreak()
	}

	e.stack.setTag(tag, attrs)

	switch tag {
	case "p", "pre":
		if err := e.newParagraph(e.opts.ParagraphStyle); err != nil {
			return err
		}
	case "li":
		if err := e.listItem(); err != nil {
			return err
		}
	case "hr":
		if err := e.horizontalRule(); err != nil {
			return err
		}
	case "img":
		return e.image(attrs)
	case "table":
		if e.expandTables {
			return e.table(attrs)
		}
	case "div":
		if e.opts.InlineStyles && css.ParseDeclarations(attrs["style"]).PageBreak() {
			e.target.AddPageBreak()
			e.endParagraph()
		}
	default:
		if level, ok := headingLevel(tag); ok {
			if err := e.heading(level); err != nil {
				return err
			}
		}
	}

	if tag == "p" || tag == "li" || tag == "pre" {
		e.run = e.paragraph.AddRun("")
	}

	if e.opts.InlineStyles && e.paragraph != nil {
		if style, ok := attrs["style"]; ok {
			if f := css.ParseDeclarations(style).Block(); !f.Empty() {
				applyBlock(e.paragraph, f)
			}
		}
	}
	return nil
}

func (e *engine) closeTag(tag string) {
	if e.skip.active() {
		if !e.skip.close(tag) {
			return
		}
		e.endParagraph()
	}

	switch tag {
	case "span":
		e.stack.popSpan()
		return
	case "ol":
		e.stack.popList(listOrdered)
		return
	case "ul":
		e.stack.popList(listUnordered)
		return
	case "table":
		if e.expandTables {
			e.tableNo++
			e.endParagraph()
		}
	case "p", "pre", "li", "hr":
		// closed paragraph is never revisited
		e.endParagraph()
	default:
		if _, ok := headingLevel(tag); ok {
			e.endParagraph()
		}
	}
	e.stack.clearTag(tag)
}

func (e *engine) endParagraph() {
	e.paragraph, e.run, e.resume = nil, nil, nil
}

// interruptParagraph lets block level object in without closing enclosing
// element.
func (e *engine) interruptParagraph() {
	if e.paragraph != nil {
		e.resume = e.paragraph
	}
	e.paragraph, e.run = nil, nil
}

// openParagraph starts paragraph for loose inline content.
func (e *engine) openParagraph() error {
	from := e.resume
	if err := e.newParagraph(e.opts.ParagraphStyle); err != nil {
		return err
	}
	if from != nil {
		e.paragraph.CopyProperties(from)
	}
	return nil
}

func (e *engine) newParagraph(style string) error {
	p, err := e.target.AddParagraph(style)
	if err != nil {
		return err
	}
	e.paragraph, e.run, e.resume = p, nil, nil
	return nil
}

func (e *engine) listItem() error {
	style := "List Bullet"
	if e.stack.listKind() == listOrdered {
		style = "List Number"
	}
	if err := e.newParagraph(style); err != nil {
		return err
	}
	e.paragraph.SetLeftIndent(docx.Inches(listIndent(e.stack.listDepth())))
	e.paragraph.SetLineSpacing(1)
	return nil
}

func listIndent(depth int) float64 {
	return min(float64(depth)*listIndentStep, css.MaxIndent)
}

func (e *engine) heading(level int) error {
	if !e.topLevel() {
		return e.newParagraph("")
	}
	p, err := e.doc.AddHeading(min(level, 9))
	if err != nil {
		return err
	}
	e.paragraph, e.run = p, nil
	return nil
}

// horizontalRule is empty paragraph with bottom border.
func (e *engine) horizontalRule() error {
	if err := e.newParagraph(""); err != nil {
		return err
	}
	bdr := etree.NewElement("w:pBdr")
	bottom := bdr.CreateElement("w:bottom")
	bottom.CreateAttr("w:val", "single")
	bottom.CreateAttr("w:sz", "6")
	bottom.CreateAttr("w:space", "1")
	bottom.CreateAttr("w:color", "auto")
	e.paragraph.InsertProperty(bdr)
	return nil
}

func (e *engine) lineBreak() error {
	if e.paragraph == nil {
		if err := e.openParagraph(); err != nil {
			return err
		}
	}
	if e.run == nil {
		e.run = e.paragraph.AddRun("")
	}
	e.run.AddBreak(docx.BreakLine)
	return nil
}

func applyBlock(p *docx.Paragraph, f css.BlockFormat) {
	if f.HasAlign {
		p.SetAlignment(alignment(f.Align))
	}
	if f.HasIndent {
		p.SetLeftIndent(docx.Inches(f.Indent))
	}
}

func alignment(a css.Alignment) docx.Alignment {
	switch a {
	case css.AlignCenter:
		return docx.AlignCenter
	case css.AlignRight:
		return docx.AlignRight
	case css.AlignJustify:
		return docx.AlignJustify
	default:
		return docx.AlignLeft
	}
}

func documentTitle(root *html.Node) string {
	if n := titleSelector.MatchFirst(root); n != nil {
		return normalizeSpace(textContent(n))
	}
	return ""
}
