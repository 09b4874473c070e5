package htmldocx

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"h2docx/css"
	"h2docx/docx"
)

var (
	tableSelector = cascadia.MustCompile("table")
	titleSelector = cascadia.MustCompile("title")
)

// cellBorder is used for tables with collapsed borders.
var cellBorder = docx.Border{Val: "single", Size: 8, Color: "000000"}

// discoverTables returns tables in document order leaving out nested ones,
// those are reached by cell conversion.
func discoverTables(root *html.Node) []*html.Node {
	var (
		out  []*html.Node
		nest int
	)
	for _, t := range tableSelector.MatchAll(root) {
		if nest > 0 {
			nest--
			continue
		}
		if insideSkipped(t) {
			continue
		}
		out = append(out, t)
		nest = nestedTables(t)
	}
	return out
}

func nestedTables(t *html.Node) int {
	// selector matches the table itself
	return len(tableSelector.MatchAll(t)) - 1
}

// insideSkipped reports tables the walk never sees.
func insideSkipped(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && skipped(p.Data) {
			return true
		}
	}
	return false
}

func isElement(n *html.Node, names ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, name := range names {
		if n.Data == name {
			return true
		}
	}
	return false
}

// tableRows returns rows belonging to the table itself, directly or through
// row groups.
func tableRows(t *html.Node) []*html.Node {
	var rows []*html.Node
	for c := t.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isElement(c, "tr"):
			rows = append(rows, c)
		case isElement(c, "thead", "tbody", "tfoot"):
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if isElement(r, "tr") {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, "td", "th") {
			cells = append(cells, c)
		}
	}
	return cells
}

// cellMarkup renders cell content, header cells are emphasized.
func cellMarkup(cell *html.Node) (string, error) {
	var parts []string
	for c := cell.FirstChild; c != nil; c = c.NextSibling {
		var sb strings.Builder
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
		parts = append(parts, sb.String())
	}
	markup := strings.Join(parts, " ")
	if cell.Data == "th" {
		markup = "<b>" + markup + "</b>"
	}
	return markup, nil
}

// table expands next discovered table. Its tokens are skipped by the walk
// since every cell is converted separately.
func (e *engine) table(attrs map[string]string) error {
	e.skip.enter("table")
	e.endParagraph()

	if e.tableNo >= len(e.tables) {
		e.log.Warn("Table was not discovered in parsed markup, skipping", zap.Int("table", e.tableNo))
		return nil
	}
	node := e.tables[e.tableNo]

	rows := tableRows(node)
	cols := 0
	if len(rows) > 0 {
		cols = len(rowCells(rows[0]))
	}
	if cols == 0 {
		e.log.Debug("Empty table skipped", zap.Int("table", e.tableNo), zap.Int("rows", len(rows)))
		return nil
	}
	if e.depth >= e.opts.MaxTableDepth {
		e.log.Warn("Table nesting is too deep, rendering as text", zap.Int("depth", e.depth))
		return e.flatTable(rows)
	}

	tbl, err := e.target.AddTable(len(rows), cols, e.opts.TableStyle)
	if err != nil {
		return err
	}
	var format css.TableFormat
	if e.opts.InlineStyles {
		format = css.ParseDeclarations(attrs["style"]).Table()
	}
	applyTable(tbl, format)

	for r, row := range rows {
		for c, node := range rowCells(row) {
			if c >= cols {
				e.log.Debug("Cell outside of table grid dropped", zap.Int("row", r), zap.Int("col", c))
				break
			}
			cell, err := tbl.Cell(r, c)
			if err != nil {
				return err
			}
			markup, err := cellMarkup(node)
			if err != nil {
				return err
			}
			if err := e.conv.convertCell(e.ctx, markup, e.doc, cell, e.depth+1); err != nil {
				return err
			}
		}
	}

	// cells now have runs to apply fonts to
	if err := tbl.SetStyle(e.opts.TableStyle); err != nil {
		return err
	}
	applyTable(tbl, format)
	return nil
}

func applyTable(tbl *docx.Table, f css.TableFormat) {
	if f.HasAlign {
		tbl.SetAlignment(alignment(f.Align))
	}
	if f.HasIndent {
		tbl.SetLeftIndent(docx.Inches(f.Indent))
	}
	for _, cell := range tbl.Cells() {
		if f.FontFamily != "" {
			if r := firstRun(cell); r != nil {
				r.SetFont(f.FontFamily)
			}
		}
		if f.Collapse {
			cell.SetBorders(cellBorder)
		}
	}
}

func firstRun(cell *docx.Cell) *docx.Run {
	for _, p := range cell.Paragraphs() {
		if runs := p.Runs(); len(runs) > 0 {
			return runs[0]
		}
	}
	return nil
}

// flatTable writes every row as a paragraph with tab separated cells.
func (e *engine) flatTable(rows []*html.Node) error {
	for _, row := range rows {
		var cells []string
		for _, c := range rowCells(row) {
			cells = append(cells, normalizeSpace(textContent(c)))
		}
		if err := e.newParagraph(e.opts.ParagraphStyle); err != nil {
			return err
		}
		e.paragraph.AddRun(strings.Join(cells, "\t"))
	}
	e.endParagraph()
	return nil
}
