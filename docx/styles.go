package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

type styleKind int

const (
	styleParagraph styleKind = iota
	styleCharacter
	styleTable
)

func (k styleKind) String() string {
	switch k {
	case styleCharacter:
		return "character"
	case styleTable:
		return "table"
	default:
		return "paragraph"
	}
}

const (
	numBullet  = 1
	numDecimal = 2
)

type styleDef struct {
	id      string
	name    string // user visible name used for lookup
	xmlName string // name stored in styles.xml if it differs
	kind    styleKind
	basedOn string
	isDef   bool
	pPr     func(*etree.Element)
	rPr     func(*etree.Element)
	tblPr   func(*etree.Element)
}

var builtinStyles = buildStyles()

func buildStyles() []styleDef {
	styles := []styleDef{
		{id: "Normal", name: "Normal", kind: styleParagraph, isDef: true},
		{id: "NoSpacing", name: "No Spacing", kind: styleParagraph, basedOn: "Normal",
			pPr: func(el *etree.Element) { spacing(el, 0, 0, singleLine) }},
		{id: "Title", name: "Title", kind: styleParagraph, basedOn: "Normal",
			pPr: func(el *etree.Element) { el.CreateElement("w:contextualSpacing") },
			rPr: func(el *etree.Element) { font(el, "Calibri Light"); size(el, 56) }},
		{id: "Subtitle", name: "Subtitle", kind: styleParagraph, basedOn: "Normal",
			rPr: func(el *etree.Element) { color(el, "5A5A5A"); size(el, 22) }},
		{id: "Quote", name: "Quote", kind: styleParagraph, basedOn: "Normal",
			pPr: func(el *etree.Element) { el.CreateElement("w:jc").CreateAttr("w:val", "center") },
			rPr: func(el *etree.Element) { el.CreateElement("w:i"); color(el, "404040") }},
		{id: "Caption", name: "Caption", kind: styleParagraph, basedOn: "Normal",
			rPr: func(el *etree.Element) { el.CreateElement("w:i"); color(el, "44546A"); size(el, 18) }},
		{id: "ListParagraph", name: "List Paragraph", kind: styleParagraph, basedOn: "Normal",
			pPr: func(el *etree.Element) { indent(el, 720, 0); el.CreateElement("w:contextualSpacing") }},
		{id: "ListBullet", name: "List Bullet", kind: styleParagraph, basedOn: "Normal",
			pPr: func(el *etree.Element) { numbering(el, numBullet); indent(el, 360, 360); el.CreateElement("w:contextualSpacing") }},
		{id: "ListNumber", name: "List Number", kind: styleParagraph, basedOn: "Normal",
			pPr: func(el *etree.Element) { numbering(el, numDecimal); indent(el, 360, 360); el.CreateElement("w:contextualSpacing") }},
		{id: "DefaultParagraphFont", name: "Default Paragraph Font", kind: styleCharacter, isDef: true},
		{id: "Hyperlink", name: "Hyperlink", kind: styleCharacter, basedOn: "DefaultParagraphFont",
			rPr: func(el *etree.Element) { color(el, "0563C1"); el.CreateElement("w:u").CreateAttr("w:val", "single") }},
		{id: "TableNormal", name: "Normal Table", kind: styleTable, isDef: true,
			tblPr: func(el *etree.Element) { cellMargins(el, 108) }},
		{id: "TableGrid", name: "Table Grid", kind: styleTable, basedOn: "TableNormal",
			tblPr: func(el *etree.Element) { tableBorders(el); cellMargins(el, 108) }},
	}
	for level := 1; level <= 9; level++ {
		hsize := max(32-2*(level-1)*2, 22)
		styles = append(styles, styleDef{
			id: fmt.Sprintf("Heading%d", level), name: fmt.Sprintf("Heading %d", level), xmlName: fmt.Sprintf("heading %d", level),
			kind: styleParagraph, basedOn: "Normal",
			pPr: func(el *etree.Element) {
				el.CreateElement("w:keepNext")
				el.CreateElement("w:keepLines")
				before := 40
				if level == 1 {
					before = 240
				}
				spacing(el, before, 0, 0)
				el.CreateElement("w:outlineLvl").CreateAttr("w:val", itoa(int64(level-1)))
			},
			rPr: func(el *etree.Element) {
				font(el, "Calibri Light")
				if level <= 3 {
					el.CreateElement("w:b")
				}
				color(el, "2F5496")
				size(el, hsize)
			},
		})
	}
	return styles
}

func spacing(pPr *etree.Element, before, after, line int) {
	el := pPr.CreateElement("w:spacing")
	el.CreateAttr("w:before", itoa(int64(before)))
	el.CreateAttr("w:after", itoa(int64(after)))
	if line > 0 {
		el.CreateAttr("w:line", itoa(int64(line)))
		el.CreateAttr("w:lineRule", "auto")
	}
}

func indent(pPr *etree.Element, left, hanging int) {
	el := pPr.CreateElement("w:ind")
	el.CreateAttr("w:left", itoa(int64(left)))
	if hanging > 0 {
		el.CreateAttr("w:hanging", itoa(int64(hanging)))
	}
}

func numbering(pPr *etree.Element, numID int) {
	numPr := pPr.CreateElement("w:numPr")
	numPr.CreateElement("w:ilvl").CreateAttr("w:val", "0")
	numPr.CreateElement("w:numId").CreateAttr("w:val", itoa(int64(numID)))
}

func font(rPr *etree.Element, name string) {
	el := rPr.CreateElement("w:rFonts")
	el.CreateAttr("w:ascii", name)
	el.CreateAttr("w:hAnsi", name)
}

func color(rPr *etree.Element, hex string) {
	rPr.CreateElement("w:color").CreateAttr("w:val", hex)
}

func size(rPr *etree.Element, halfPoints int) {
	rPr.CreateElement("w:sz").CreateAttr("w:val", itoa(int64(halfPoints)))
	rPr.CreateElement("w:szCs").CreateAttr("w:val", itoa(int64(halfPoints)))
}

func cellMargins(tblPr *etree.Element, side int) {
	mar := tblPr.CreateElement("w:tblCellMar")
	for _, s := range []string{"left", "right"} {
		el := mar.CreateElement("w:" + s)
		el.CreateAttr("w:w", itoa(int64(side)))
		el.CreateAttr("w:type", "dxa")
	}
}

func tableBorders(tblPr *etree.Element) {
	b := tblPr.CreateElement("w:tblBorders")
	for _, s := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		el := b.CreateElement("w:" + s)
		el.CreateAttr("w:val", "single")
		el.CreateAttr("w:sz", "4")
		el.CreateAttr("w:space", "0")
		el.CreateAttr("w:color", "auto")
	}
}

func findStyle(name string, kind styleKind) (styleDef, bool) {
	for _, s := range builtinStyles {
		if s.kind == kind && (s.id == name || strings.EqualFold(s.name, name)) {
			return s, true
		}
	}
	return styleDef{}, false
}

// styleID maps style name (or id) to style id, empty name means default.
func (d *Document) styleID(name string, kind styleKind) (string, error) {
	if name == "" {
		return "", nil
	}
	s, ok := findStyle(name, kind)
	if !ok {
		return "", &StyleError{Name: name}
	}
	return s.id, nil
}

func (d *Document) styleName(id string) string {
	for _, s := range builtinStyles {
		if s.id == id {
			return s.name
		}
	}
	return id
}

// HasParagraphStyle reports whether named paragraph style is defined.
func (d *Document) HasParagraphStyle(name string) bool {
	_, ok := findStyle(name, styleParagraph)
	return ok
}

// HasTableStyle reports whether named table style is defined.
func (d *Document) HasTableStyle(name string) bool {
	_, ok := findStyle(name, styleTable)
	return ok
}

func newPart(root string) (*etree.Document, *etree.Element) {
	doc := newXMLDocument()
	el := doc.CreateElement(root)
	el.CreateAttr("xmlns:w", nsW)
	return doc, el
}

func stylesPart() *etree.Document {
	doc, root := newPart("w:styles")

	defaults := root.CreateElement("w:docDefaults")
	rPr := defaults.CreateElement("w:rPrDefault").CreateElement("w:rPr")
	font(rPr, "Calibri")
	size(rPr, 22)
	spacing(defaults.CreateElement("w:pPrDefault").CreateElement("w:pPr"), 0, 160, 259)

	for _, s := range builtinStyles {
		st := root.CreateElement("w:style")
		st.CreateAttr("w:type", s.kind.String())
		if s.isDef {
			st.CreateAttr("w:default", "1")
		}
		st.CreateAttr("w:styleId", s.id)
		name := s.name
		if s.xmlName != "" {
			name = s.xmlName
		}
		st.CreateElement("w:name").CreateAttr("w:val", name)
		if s.basedOn != "" {
			st.CreateElement("w:basedOn").CreateAttr("w:val", s.basedOn)
		}
		if s.kind == styleParagraph && !s.isDef {
			st.CreateElement("w:next").CreateAttr("w:val", "Normal")
		}
		st.CreateElement("w:qFormat")
		if s.pPr != nil {
			s.pPr(st.CreateElement("w:pPr"))
		}
		if s.rPr != nil {
			s.rPr(st.CreateElement("w:rPr"))
		}
		if s.tblPr != nil {
			s.tblPr(st.CreateElement("w:tblPr"))
		}
	}
	return doc
}

func numberingPart() *etree.Document {
	doc, root := newPart("w:numbering")

	formats := []struct {
		fmt  string
		text func(level int) string
	}{
		{"bullet", func(int) string { return "•" }},
		{"decimal", func(level int) string { return fmt.Sprintf("%%%d.", level+1) }},
	}
	for i, f := range formats {
		abs := root.CreateElement("w:abstractNum")
		abs.CreateAttr("w:abstractNumId", itoa(int64(i)))
		abs.CreateElement("w:multiLevelType").CreateAttr("w:val", "hybridMultilevel")
		for level := range 9 {
			lvl := abs.CreateElement("w:lvl")
			lvl.CreateAttr("w:ilvl", itoa(int64(level)))
			lvl.CreateElement("w:start").CreateAttr("w:val", "1")
			lvl.CreateElement("w:numFmt").CreateAttr("w:val", f.fmt)
			lvl.CreateElement("w:lvlText").CreateAttr("w:val", f.text(level))
			lvl.CreateElement("w:lvlJc").CreateAttr("w:val", "left")
			indent(lvl.CreateElement("w:pPr"), 720*(level+1), 360)
		}
	}
	for i := range formats {
		num := root.CreateElement("w:num")
		num.CreateAttr("w:numId", itoa(int64(i+1)))
		num.CreateElement("w:abstractNumId").CreateAttr("w:val", itoa(int64(i)))
	}
	return doc
}
