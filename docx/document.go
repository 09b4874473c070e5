// Package docx builds WordprocessingML packages.
package docx

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// Largest picture extent which fits the default page.
var (
	UsableWidth  = Inches(5.8)
	UsableHeight = Inches(8.1)
)

// Container is anything block content can be added to: document body or
// table cell.
type Container interface {
	AddParagraph(style string) (*Paragraph, error)
	AddTable(rows, cols int, style string) (*Table, error)
	AddPageBreak() *Paragraph
	Paragraphs() []*Paragraph
	Tables() []*Table
	Document() *Document
}

// Properties are stored in docProps/core.xml.
type Properties struct {
	Title      string
	Creator    string
	Identifier string
	Created    time.Time
}

type relationship struct {
	id       string
	typ      string
	target   string
	external bool
}

type mediaPart struct {
	name string // relative to word/
	mime string
	data []byte
}

// Document is in-memory WordprocessingML document. It is not safe for
// concurrent use.
type Document struct {
	blocks

	Properties Properties

	rels     []relationship
	media    []mediaPart
	footer   *Footer
	nextRel  int
	nextPict int
}

// New creates empty document with default styles.
func New() *Document {
	d := &Document{nextRel: 1}
	d.blocks = blocks{doc: d, el: etree.NewElement("w:body")}

	id := uuid.New()
	if v7, err := uuid.NewV7(); err == nil {
		id = v7
	}
	d.Properties = Properties{Identifier: "urn:uuid:" + id.String(), Created: time.Now().UTC()}

	d.addRel(relStyles, "styles.xml", false)
	d.addRel(relNumbering, "numbering.xml", false)
	return d
}

func (d *Document) addRel(typ, target string, external bool) string {
	id := fmt.Sprintf("rId%d", d.nextRel)
	d.nextRel++
	d.rels = append(d.rels, relationship{id: id, typ: typ, target: target, external: external})
	return id
}

// RelateExternal registers external relationship returning its id. Repeated
// registration of the same target and type returns the same id.
func (d *Document) RelateExternal(target, typ string) string {
	for _, r := range d.rels {
		if r.external && r.target == target && r.typ == typ {
			return r.id
		}
	}
	return d.addRel(typ, target, true)
}

// Relationship returns target of relationship by id.
func (d *Document) Relationship(id string) (target string, ok bool) {
	for _, r := range d.rels {
		if r.id == id {
			return r.target, true
		}
	}
	return "", false
}

// AddHeading adds heading paragraph, level 0 is a title.
func (d *Document) AddHeading(level int) (*Paragraph, error) {
	if level < 0 || level > 9 {
		return nil, fmt.Errorf("heading level must be in range 0-9, got %d", level)
	}
	style := "Title"
	if level > 0 {
		style = fmt.Sprintf("Heading %d", level)
	}
	return d.AddParagraph(style)
}

// Footer returns footer of the section. Document has single section.
func (d *Document) Footer(section int) (*Footer, error) {
	if section != 0 {
		return nil, fmt.Errorf("section %d does not exist", section)
	}
	if d.footer == nil {
		d.footer = newFooter(d)
		d.footer.relID = d.addRel(relFooter, "footer1.xml", false)
	}
	return d.footer, nil
}

// HasFooter reports whether footer part will be written.
func (d *Document) HasFooter() bool {
	return d.footer != nil
}

// Media returns number of embedded media parts.
func (d *Document) Media() int {
	return len(d.media)
}

// MediaData returns content of embedded picture by relationship id.
func (d *Document) MediaData(relID string) ([]byte, bool) {
	target, ok := d.Relationship(relID)
	if !ok {
		return nil, false
	}
	for _, m := range d.media {
		if m.name == target {
			return m.data, true
		}
	}
	return nil, false
}

// blocks implements Container on top of w:body or w:tc element.
type blocks struct {
	doc *Document
	el  *etree.Element
}

func (b *blocks) Document() *Document {
	return b.doc
}

func (b *blocks) AddParagraph(style string) (*Paragraph, error) {
	id, err := b.doc.styleID(style, styleParagraph)
	if err != nil {
		return nil, err
	}
	p := &Paragraph{doc: b.doc, el: b.el.CreateElement("w:p")}
	if id != "" {
		p.setStyleID(id)
	}
	return p, nil
}

func (b *blocks) AddTable(rows, cols int, style string) (*Table, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid table dimensions %dx%d", rows, cols)
	}
	id, err := b.doc.styleID(style, styleTable)
	if err != nil {
		return nil, err
	}
	t := newTable(b.doc, b.el.CreateElement("w:tbl"), rows, cols)
	if id != "" {
		t.setStyleID(id)
	}
	return t, nil
}

// AddPageBreak adds paragraph holding single page break.
func (b *blocks) AddPageBreak() *Paragraph {
	p := &Paragraph{doc: b.doc, el: b.el.CreateElement("w:p")}
	p.AddRun("").AddBreak(BreakPage)
	return p
}

func (b *blocks) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, el := range childrenByTag(b.el, "w:p") {
		out = append(out, &Paragraph{doc: b.doc, el: el})
	}
	return out
}

func (b *blocks) Tables() []*Table {
	var out []*Table
	for _, el := range childrenByTag(b.el, "w:tbl") {
		out = append(out, &Table{doc: b.doc, el: el})
	}
	return out
}

// Block is either paragraph or table.
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// Blocks returns block level content in document order.
func (b *blocks) Blocks() []Block {
	var out []Block
	for _, el := range b.el.ChildElements() {
		switch el.FullTag() {
		case "w:p":
			out = append(out, Block{Paragraph: &Paragraph{doc: b.doc, el: el}})
		case "w:tbl":
			out = append(out, Block{Table: &Table{doc: b.doc, el: el}})
		}
	}
	return out
}

// Len returns number of block level elements.
func (b *blocks) Len() int {
	return len(b.el.ChildElements())
}
