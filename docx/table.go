package docx

import (
	"fmt"

	"github.com/beevik/etree"
)

// defaultTableWidth is distributed evenly between grid columns.
var defaultTableWidth = Inches(6)

// Table wraps w:tbl element.
type Table struct {
	doc *Document
	el  *etree.Element
}

func newTable(doc *Document, el *etree.Element, rows, cols int) *Table {
	tblPr := el.CreateElement("w:tblPr")
	tblW := tblPr.CreateElement("w:tblW")
	tblW.CreateAttr("w:w", "0")
	tblW.CreateAttr("w:type", "auto")
	tblPr.CreateElement("w:tblLook").CreateAttr("w:val", "04A0")

	var colW int64
	if cols > 0 {
		colW = defaultTableWidth.Twips() / int64(cols)
	}
	grid := el.CreateElement("w:tblGrid")
	for range cols {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", itoa(colW))
	}
	for range rows {
		tr := el.CreateElement("w:tr")
		for range cols {
			tcW := tr.CreateElement("w:tc").CreateElement("w:tcPr").CreateElement("w:tcW")
			tcW.CreateAttr("w:w", itoa(colW))
			tcW.CreateAttr("w:type", "dxa")
		}
	}
	return &Table{doc: doc, el: el}
}

func (t *Table) Element() *etree.Element {
	return t.el
}

func (t *Table) rows() []*etree.Element {
	return childrenByTag(t.el, "w:tr")
}

func (t *Table) Rows() int {
	return len(t.rows())
}

func (t *Table) Cols() int {
	return len(childrenByTag(t.el.SelectElement("w:tblGrid"), "w:gridCol"))
}

// Cell returns cell handle by zero based position.
func (t *Table) Cell(row, col int) (*Cell, error) {
	rows := t.rows()
	if row < 0 || row >= len(rows) {
		return nil, fmt.Errorf("row %d is out of range [0, %d)", row, len(rows))
	}
	cells := childrenByTag(rows[row], "w:tc")
	if col < 0 || col >= len(cells) {
		return nil, fmt.Errorf("column %d is out of range [0, %d)", col, len(cells))
	}
	return &Cell{blocks: blocks{doc: t.doc, el: cells[col]}}, nil
}

// Cells returns all cells in row-major order.
func (t *Table) Cells() []*Cell {
	var out []*Cell
	for _, tr := range t.rows() {
		for _, tc := range childrenByTag(tr, "w:tc") {
			out = append(out, &Cell{blocks: blocks{doc: t.doc, el: tc}})
		}
	}
	return out
}

func (t *Table) tblPr() *etree.Element {
	return ensureChild(t.el, "w:tblPr", tblOrder)
}

func (t *Table) setStyleID(id string) {
	replaceChild(t.tblPr(), newValElement("w:tblStyle", id), tblPrOrder)
}

// SetStyle applies named table style, empty name removes style.
func (t *Table) SetStyle(name string) error {
	id, err := t.doc.styleID(name, styleTable)
	if err != nil {
		return err
	}
	if id == "" {
		removeChildren(t.tblPr(), "w:tblStyle")
		return nil
	}
	t.setStyleID(id)
	return nil
}

func (t *Table) Style() string {
	return t.doc.styleName(attrValue(t.tblPr().SelectElement("w:tblStyle"), "w:val"))
}

func (t *Table) SetAlignment(a Alignment) {
	replaceChild(t.tblPr(), newValElement("w:jc", a.jc()), tblPrOrder)
}

func (t *Table) Alignment() Alignment {
	return alignmentFromJC(attrValue(t.tblPr().SelectElement("w:jc"), "w:val"))
}

func (t *Table) SetLeftIndent(l Length) {
	ind := etree.NewElement("w:tblInd")
	ind.CreateAttr("w:w", itoa(l.Twips()))
	ind.CreateAttr("w:type", "dxa")
	replaceChild(t.tblPr(), ind, tblPrOrder)
}

func (t *Table) LeftIndent() Length {
	return fromTwips(attrInt(t.tblPr().SelectElement("w:tblInd"), "w:w"))
}

// Border describes one side of cell border.
type Border struct {
	Val   string // "single", "double", ...
	Size  int    // eighths of a point
	Color string // "RRGGBB" or "auto"
}

var borderSides = []string{"top", "left", "bottom", "right"}

// Cell is table cell, it can hold any block content including other tables.
type Cell struct {
	blocks
}

func (c *Cell) tcPr() *etree.Element {
	return ensureChild(c.el, "w:tcPr", tcOrder)
}

// SetBorders applies the same border to all four sides.
func (c *Cell) SetBorders(b Border) {
	borders := etree.NewElement("w:tcBorders")
	for _, side := range borderSides {
		el := borders.CreateElement("w:" + side)
		el.CreateAttr("w:val", b.Val)
		el.CreateAttr("w:sz", itoa(int64(b.Size)))
		el.CreateAttr("w:space", "0")
		el.CreateAttr("w:color", b.Color)
	}
	replaceChild(c.tcPr(), borders, tcPrOrder)
}

// Border returns border of one side ("top", "left", "bottom", "right").
func (c *Cell) Border(side string) (Border, bool) {
	borders := c.tcPr().SelectElement("w:tcBorders")
	if borders == nil {
		return Border{}, false
	}
	el := borders.SelectElement("w:" + side)
	if el == nil {
		return Border{}, false
	}
	return Border{
		Val:   attrValue(el, "w:val"),
		Size:  int(attrInt(el, "w:sz")),
		Color: attrValue(el, "w:color"),
	}, true
}

// Text returns text of all cell paragraphs separated by new lines.
func (c *Cell) Text() string {
	var s string
	for i, p := range c.Paragraphs() {
		if i > 0 {
			s += "\n"
		}
		s += p.Text()
	}
	return s
}
