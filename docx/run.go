package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// BreakKind selects w:br type.
type BreakKind int

const (
	BreakLine BreakKind = iota
	BreakPage
)

// Run wraps w:r element.
type Run struct {
	doc *Document
	el  *etree.Element
}

func (r *Run) Element() *etree.Element {
	return r.el
}

func (r *Run) rPr() *etree.Element {
	return ensureChild(r.el, "w:rPr", rOrder)
}

func (r *Run) property(tag string) *etree.Element {
	if rPr := r.el.SelectElement("w:rPr"); rPr != nil {
		return rPr.SelectElement(tag)
	}
	return nil
}

func (r *Run) setProperty(el *etree.Element) {
	replaceChild(r.rPr(), el, rPrOrder)
}

func (r *Run) setToggle(tag string, on bool) {
	if on {
		r.setProperty(etree.NewElement(tag))
		return
	}
	if rPr := r.el.SelectElement("w:rPr"); rPr != nil {
		removeChildren(rPr, tag)
	}
}

// toggle is on when element is present and its value is not explicitly off.
func (r *Run) toggle(tag string) bool {
	el := r.property(tag)
	if el == nil {
		return false
	}
	switch el.SelectAttrValue("w:val", "true") {
	case "0", "false", "off":
		return false
	}
	return true
}

func (r *Run) SetBold(on bool)   { r.setToggle("w:b", on) }
func (r *Run) Bold() bool        { return r.toggle("w:b") }
func (r *Run) SetItalic(on bool) { r.setToggle("w:i", on) }
func (r *Run) Italic() bool      { return r.toggle("w:i") }
func (r *Run) SetStrike(on bool) { r.setToggle("w:strike", on) }
func (r *Run) Strike() bool      { return r.toggle("w:strike") }

func (r *Run) SetUnderline(on bool) {
	if on {
		r.setProperty(newValElement("w:u", "single"))
		return
	}
	r.setToggle("w:u", false)
}

func (r *Run) Underline() bool {
	el := r.property("w:u")
	return el != nil && el.SelectAttrValue("w:val", "single") != "none"
}

func (r *Run) setVertAlign(val string, on bool) {
	if on {
		r.setProperty(newValElement("w:vertAlign", val))
		return
	}
	if el := r.property("w:vertAlign"); el != nil && el.SelectAttrValue("w:val", "") == val {
		r.rPr().RemoveChild(el)
	}
}

func (r *Run) SetSuperscript(on bool) { r.setVertAlign("superscript", on) }
func (r *Run) SetSubscript(on bool)   { r.setVertAlign("subscript", on) }

func (r *Run) Superscript() bool {
	el := r.property("w:vertAlign")
	return el != nil && el.SelectAttrValue("w:val", "") == "superscript"
}

func (r *Run) Subscript() bool {
	el := r.property("w:vertAlign")
	return el != nil && el.SelectAttrValue("w:val", "") == "subscript"
}

// SetFont sets typeface for all scripts.
func (r *Run) SetFont(name string) {
	el := etree.NewElement("w:rFonts")
	for _, key := range []string{"w:ascii", "w:hAnsi", "w:cs", "w:eastAsia"} {
		el.CreateAttr(key, name)
	}
	r.setProperty(el)
}

func (r *Run) Font() string {
	return attrValue(r.property("w:rFonts"), "w:ascii")
}

// SetColor sets text color as "RRGGBB".
func (r *Run) SetColor(hex string) {
	r.setProperty(newValElement("w:color", strings.ToUpper(hex)))
}

func (r *Run) Color() string {
	return attrValue(r.property("w:color"), "w:val")
}

// SetHighlight sets one of predefined highlight colors ("yellow",
// "lightGray", ...).
func (r *Run) SetHighlight(name string) {
	r.setProperty(newValElement("w:highlight", name))
}

func (r *Run) Highlight() string {
	return attrValue(r.property("w:highlight"), "w:val")
}

func (r *Run) SetSize(l Length) {
	hp := itoa(l.HalfPoints())
	r.setProperty(newValElement("w:sz", hp))
	r.setProperty(newValElement("w:szCs", hp))
}

func (r *Run) Size() Length {
	return Pt(float64(attrInt(r.property("w:sz"), "w:val")) / 2)
}

// AddText appends text, new lines become line breaks and tabs become tab
// characters.
func (r *Run) AddText(text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			r.AddBreak(BreakLine)
		}
		for j, chunk := range strings.Split(line, "\t") {
			if j > 0 {
				r.el.CreateElement("w:tab")
			}
			if chunk == "" {
				continue
			}
			t := r.el.CreateElement("w:t")
			t.CreateAttr("xml:space", "preserve")
			t.SetText(chunk)
		}
	}
}

func (r *Run) AddBreak(kind BreakKind) {
	br := r.el.CreateElement("w:br")
	if kind == BreakPage {
		br.CreateAttr("w:type", "page")
	}
}

// Breaks returns number of breaks of requested kind.
func (r *Run) Breaks(kind BreakKind) int {
	n := 0
	for _, br := range childrenByTag(r.el, "w:br") {
		page := br.SelectAttrValue("w:type", "") == "page"
		if page == (kind == BreakPage) {
			n++
		}
	}
	return n
}

// Text returns run text with breaks as new lines.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, c := range r.el.ChildElements() {
		switch c.FullTag() {
		case "w:t":
			sb.WriteString(c.Text())
		case "w:tab":
			sb.WriteByte('\t')
		case "w:br":
			if c.SelectAttrValue("w:type", "") != "page" {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
