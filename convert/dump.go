package convert

import (
	"h2docx/docx"
	"h2docx/utils/debug"
)

var runFlagNames = []string{"bold", "italic", "underline", "strike", "superscript", "subscript"}

// dumpDocument renders converted document structure for debug report.
func dumpDocument(doc *docx.Document) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "document")
	tw.TextBlock(1, "title", doc.Properties.Title)
	tw.Line(1, "media: %d", doc.Media())
	dumpBlocks(tw, 1, doc.Blocks())
	if doc.HasFooter() {
		footer, _ := doc.Footer(0)
		tw.Line(1, "footer")
		dumpBlocks(tw, 2, footer.Blocks())
	}
	return tw.String()
}

func dumpBlocks(tw *debug.TreeWriter, depth int, blocks []docx.Block) {
	for _, b := range blocks {
		switch {
		case b.Paragraph != nil:
			dumpParagraph(tw, depth, b.Paragraph)
		case b.Table != nil:
			dumpTable(tw, depth, b.Table)
		}
	}
}

func dumpParagraph(tw *debug.TreeWriter, depth int, p *docx.Paragraph) {
	tw.Line(depth, "paragraph style=%q align=%v indent=%.2fin", p.Style(), p.Alignment(), p.LeftIndent().Inches())
	for _, l := range p.Hyperlinks() {
		tw.TextBlock(depth+1, "link "+l.Target, l.Text)
	}
	for _, r := range p.Runs() {
		tw.TextBlock(depth+1, "run", r.Text())
		tw.Flags(depth+2, "format", runFlagNames,
			[]bool{r.Bold(), r.Italic(), r.Underline(), r.Strike(), r.Superscript(), r.Subscript()})
		for _, pic := range r.Pictures() {
			tw.Line(depth+2, "picture %s %.2fx%.2fin", pic.RelID, pic.Width.Inches(), pic.Height.Inches())
		}
	}
}

func dumpTable(tw *debug.TreeWriter, depth int, t *docx.Table) {
	tw.Line(depth, "table %dx%d style=%q", t.Rows(), t.Cols(), t.Style())
	for r := range t.Rows() {
		for c := range t.Cols() {
			cell, err := t.Cell(r, c)
			if err != nil {
				continue
			}
			tw.Line(depth+1, "cell %d,%d", r, c)
			dumpBlocks(tw, depth+2, cell.Blocks())
		}
	}
}
