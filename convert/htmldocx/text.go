package htmldocx

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"h2docx/css"
	"h2docx/docx"
)

const (
	monospaceFont  = "Courier"
	hyperlinkColor = "0000EE"
)

// emphasis is applied when any of the tags is open, nesting compounds.
var emphasis = []struct {
	tag   string
	apply func(*docx.Run)
}{
	{"b", func(r *docx.Run) { r.SetBold(true) }},
	{"strong", func(r *docx.Run) { r.SetBold(true) }},
	{"th", func(r *docx.Run) { r.SetBold(true) }},
	{"em", func(r *docx.Run) { r.SetItalic(true) }},
	{"i", func(r *docx.Run) { r.SetItalic(true) }},
	{"u", func(r *docx.Run) { r.SetUnderline(true) }},
	{"s", func(r *docx.Run) { r.SetStrike(true) }},
	{"sup", func(r *docx.Run) { r.SetSuperscript(true) }},
	{"sub", func(r *docx.Run) { r.SetSubscript(true) }},
}

func isHTMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// normalizeSpace drops leading and trailing white space and collapses the
// rest. Non breaking spaces are kept.
func normalizeSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isHTMLSpace), " ")
}

func (e *engine) text(data string) error {
	if e.skip.active() {
		return nil
	}
	if !e.stack.isOpen("pre") {
		data = normalizeSpace(data)
	}
	if data == "" {
		return nil
	}
	if e.paragraph == nil {
		if err := e.openParagraph(); err != nil {
			return err
		}
	}

	if href, ok := e.stack.href(); ok && href != "" {
		e.hyperlink(href, data)
		return nil
	}

	r := e.paragraph.AddRun(data)
	e.run = r
	if e.opts.InlineStyles {
		for _, decls := range e.stack.spans {
			applyRun(r, decls.Run())
		}
	}
	for _, em := range emphasis {
		if e.stack.isOpen(em.tag) {
			em.apply(r)
		}
	}
	if e.stack.isOpen("code") || e.stack.isOpen("pre") {
		r.SetFont(monospaceFont)
	}
	return nil
}

func applyRun(r *docx.Run, f css.RunFormat) {
	if f.HasColor {
		r.SetColor(f.Color.Hex())
	}
	if f.Highlight {
		r.SetHighlight("lightGray")
	}
}

// hyperlink appends w:hyperlink holding single run with link formatting.
func (e *engine) hyperlink(href, text string) {
	link := etree.NewElement("w:hyperlink")
	link.CreateAttr("r:id", e.doc.RelateExternal(href, docx.RelHyperlink))

	r := link.CreateElement("w:r")
	rPr := r.CreateElement("w:rPr")
	rPr.CreateElement("w:color").CreateAttr("w:val", hyperlinkColor)
	rPr.CreateElement("w:u").CreateAttr("w:val", "single")
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)

	e.paragraph.Append(link)
	// following breaks go to a new run after the link
	e.run = nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
