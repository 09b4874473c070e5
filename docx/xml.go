package docx

import (
	"slices"
	"strconv"

	"github.com/beevik/etree"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsPR  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"

	RelHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relFooter    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relDocument  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCore      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relApp       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
)

// Schema defined child order of property containers. Properties must be
// inserted respecting it or Word refuses to open the file.
var (
	pPrOrder = []string{
		"w:pStyle", "w:keepNext", "w:keepLines", "w:pageBreakBefore", "w:framePr", "w:widowControl",
		"w:numPr", "w:suppressLineNumbers", "w:pBdr", "w:shd", "w:tabs", "w:suppressAutoHyphens",
		"w:kinsoku", "w:wordWrap", "w:overflowPunct", "w:topLinePunct", "w:autoSpaceDE", "w:autoSpaceDN",
		"w:bidi", "w:adjustRightInd", "w:snapToGrid", "w:spacing", "w:ind", "w:contextualSpacing",
		"w:mirrorIndents", "w:suppressOverlap", "w:jc", "w:textDirection", "w:textAlignment",
		"w:textboxTightWrap", "w:outlineLvl", "w:divId", "w:cnfStyle", "w:rPr", "w:sectPr", "w:pPrChange",
	}
	rPrOrder = []string{
		"w:rStyle", "w:rFonts", "w:b", "w:bCs", "w:i", "w:iCs", "w:caps", "w:smallCaps", "w:strike",
		"w:dstrike", "w:outline", "w:shadow", "w:emboss", "w:imprint", "w:noProof", "w:snapToGrid",
		"w:vanish", "w:webHidden", "w:color", "w:spacing", "w:w", "w:kern", "w:position", "w:sz",
		"w:szCs", "w:highlight", "w:u", "w:effect", "w:bdr", "w:shd", "w:fitText", "w:vertAlign",
	}
	tblPrOrder = []string{
		"w:tblStyle", "w:tblpPr", "w:tblOverlap", "w:bidiVisual", "w:tblStyleRowBandSize",
		"w:tblStyleColBandSize", "w:tblW", "w:jc", "w:tblCellSpacing", "w:tblInd", "w:tblBorders",
		"w:shd", "w:tblLayout", "w:tblCellMar", "w:tblLook",
	}
	tcPrOrder = []string{
		"w:cnfStyle", "w:tcW", "w:gridSpan", "w:hMerge", "w:vMerge", "w:tcBorders", "w:shd",
		"w:noWrap", "w:tcMar", "w:textDirection", "w:tcFitText", "w:vAlign", "w:hideMark",
	}
	// properties element always goes first
	pOrder   = []string{"w:pPr"}
	rOrder   = []string{"w:rPr"}
	tblOrder = []string{"w:tblPr", "w:tblGrid"}
	tcOrder  = []string{"w:tcPr"}
)

// insertOrdered puts el among children of parent according to order, children
// not mentioned in order are considered to follow all mentioned ones.
func insertOrdered(parent, el *etree.Element, order []string) {
	rank := func(e *etree.Element) int {
		if r := slices.Index(order, e.FullTag()); r >= 0 {
			return r
		}
		return len(order)
	}
	mine := rank(el)
	for i, tok := range parent.Child {
		if c, ok := tok.(*etree.Element); ok && rank(c) > mine {
			parent.InsertChildAt(i, el)
			return
		}
	}
	parent.AddChild(el)
}

// ensureChild returns existing child or creates one in schema position.
func ensureChild(parent *etree.Element, tag string, order []string) *etree.Element {
	if el := parent.SelectElement(tag); el != nil {
		return el
	}
	el := etree.NewElement(tag)
	insertOrdered(parent, el, order)
	return el
}

// replaceChild drops all existing children with the same tag and inserts el.
func replaceChild(parent, el *etree.Element, order []string) {
	removeChildren(parent, el.FullTag())
	insertOrdered(parent, el, order)
}

func removeChildren(parent *etree.Element, tag string) {
	for _, c := range parent.SelectElements(tag) {
		parent.RemoveChild(c)
	}
}

func childrenByTag(parent *etree.Element, tag string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.FullTag() == tag {
			out = append(out, c)
		}
	}
	return out
}

func attrInt(el *etree.Element, key string) int64 {
	if el == nil {
		return 0
	}
	v, _ := strconv.ParseInt(el.SelectAttrValue(key, "0"), 10, 64)
	return v
}

func attrValue(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	return el.SelectAttrValue(key, "")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
