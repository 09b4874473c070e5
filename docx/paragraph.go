package docx

import (
	"math"
	"strings"

	"github.com/beevik/etree"
)

// Alignment of paragraph or table.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) jc() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "both"
	default:
		return "left"
	}
}

func (a Alignment) String() string {
	if a == AlignJustify {
		return "justify"
	}
	return a.jc()
}

func alignmentFromJC(v string) Alignment {
	switch v {
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "both", "distribute":
		return AlignJustify
	default:
		return AlignLeft
	}
}

// singleLine is line spacing value for "auto" rule meaning 1.0.
const singleLine = 240

// Paragraph wraps w:p element.
type Paragraph struct {
	doc *Document
	el  *etree.Element
}

// Element gives access to underlying XML for low level modifications.
func (p *Paragraph) Element() *etree.Element {
	return p.el
}

func (p *Paragraph) pPr() *etree.Element {
	return ensureChild(p.el, "w:pPr", pOrder)
}

// Property returns paragraph property element or nil.
func (p *Paragraph) Property(tag string) *etree.Element {
	if pPr := p.el.SelectElement("w:pPr"); pPr != nil {
		return pPr.SelectElement(tag)
	}
	return nil
}

// InsertProperty puts raw property element (w:pBdr, w:shd, ...) into
// paragraph properties in schema position replacing existing one.
func (p *Paragraph) InsertProperty(el *etree.Element) {
	replaceChild(p.pPr(), el, pPrOrder)
}

// CopyProperties replaces paragraph properties with a copy of src ones.
func (p *Paragraph) CopyProperties(src *Paragraph) {
	pPr := src.el.SelectElement("w:pPr")
	if pPr == nil {
		removeChildren(p.el, "w:pPr")
		return
	}
	replaceChild(p.el, pPr.Copy(), pOrder)
}

func (p *Paragraph) setStyleID(id string) {
	p.InsertProperty(newValElement("w:pStyle", id))
}

// SetStyle applies named paragraph style, empty name removes style.
func (p *Paragraph) SetStyle(name string) error {
	id, err := p.doc.styleID(name, styleParagraph)
	if err != nil {
		return err
	}
	if id == "" {
		if pPr := p.el.SelectElement("w:pPr"); pPr != nil {
			removeChildren(pPr, "w:pStyle")
		}
		return nil
	}
	p.setStyleID(id)
	return nil
}

// Style returns name of applied style, empty for document default.
func (p *Paragraph) Style() string {
	if el := p.Property("w:pStyle"); el != nil {
		return p.doc.styleName(el.SelectAttrValue("w:val", ""))
	}
	return ""
}

func (p *Paragraph) SetAlignment(a Alignment) {
	p.InsertProperty(newValElement("w:jc", a.jc()))
}

func (p *Paragraph) Alignment() Alignment {
	if el := p.Property("w:jc"); el != nil {
		return alignmentFromJC(el.SelectAttrValue("w:val", ""))
	}
	return AlignLeft
}

func (p *Paragraph) SetLeftIndent(l Length) {
	ind := ensureChild(p.pPr(), "w:ind", pPrOrder)
	ind.CreateAttr("w:left", itoa(l.Twips()))
}

func (p *Paragraph) LeftIndent() Length {
	return fromTwips(attrInt(p.Property("w:ind"), "w:left"))
}

// SetLineSpacing sets line spacing as multiple of single line.
func (p *Paragraph) SetLineSpacing(multiple float64) {
	sp := ensureChild(p.pPr(), "w:spacing", pPrOrder)
	sp.CreateAttr("w:line", itoa(int64(math.Round(multiple*singleLine))))
	sp.CreateAttr("w:lineRule", "auto")
}

// LineSpacing returns line spacing multiple, 0 when not set.
func (p *Paragraph) LineSpacing() float64 {
	return float64(attrInt(p.Property("w:spacing"), "w:line")) / singleLine
}

// Append adds raw element (hyperlink, bookmark, ...) at the end of
// paragraph content.
func (p *Paragraph) Append(el *etree.Element) {
	p.el.AddChild(el)
}

// AddRun appends new run with text.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{doc: p.doc, el: p.el.CreateElement("w:r")}
	if text != "" {
		r.AddText(text)
	}
	return r
}

// Runs returns runs in document order including those wrapped into
// hyperlinks.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, c := range p.el.ChildElements() {
		switch c.FullTag() {
		case "w:r":
			out = append(out, &Run{doc: p.doc, el: c})
		case "w:hyperlink":
			for _, r := range childrenByTag(c, "w:r") {
				out = append(out, &Run{doc: p.doc, el: r})
			}
		}
	}
	return out
}

// Text returns concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// Hyperlink describes w:hyperlink element of the paragraph.
type Hyperlink struct {
	RelID  string
	Target string
	Text   string
}

func (p *Paragraph) Hyperlinks() []Hyperlink {
	var out []Hyperlink
	for _, h := range childrenByTag(p.el, "w:hyperlink") {
		link := Hyperlink{RelID: h.SelectAttrValue("r:id", "")}
		link.Target, _ = p.doc.Relationship(link.RelID)
		for _, r := range childrenByTag(h, "w:r") {
			link.Text += (&Run{doc: p.doc, el: r}).Text()
		}
		out = append(out, link)
	}
	return out
}

// HasBorder reports whether paragraph has border on the requested side.
func (p *Paragraph) HasBorder(side string) bool {
	bdr := p.Property("w:pBdr")
	return bdr != nil && bdr.SelectElement("w:"+side) != nil
}

func newValElement(tag, val string) *etree.Element {
	el := etree.NewElement(tag)
	el.CreateAttr("w:val", val)
	return el
}
