package docx

import (
	"github.com/beevik/etree"
)

// Footer is the primary footer of the document section. It holds block
// content the same way the body does.
type Footer struct {
	blocks
	relID string
}

func newFooter(d *Document) *Footer {
	f := &Footer{blocks: blocks{doc: d, el: etree.NewElement("w:ftr")}}
	f.el.CreateElement("w:p")
	return f
}

// Clear removes footer content leaving single empty paragraph, footer
// may not be empty.
func (f *Footer) Clear() *Paragraph {
	for _, c := range f.el.ChildElements() {
		f.el.RemoveChild(c)
	}
	return &Paragraph{doc: f.doc, el: f.el.CreateElement("w:p")}
}
