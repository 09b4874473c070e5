package css

import (
	"math"
	"strings"
)

const (
	// IndentStep is applied for every 10px of margin-left, inches.
	IndentStep = 0.25
	// MaxIndent caps any left indent, inches.
	MaxIndent = 5.5
)

// Alignment of paragraph or table.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// BlockFormat is paragraph level effect of inline style.
type BlockFormat struct {
	Align     Alignment
	HasAlign  bool
	Indent    float64 // inches
	HasIndent bool
}

// Empty reports whether nothing needs to be applied.
func (b BlockFormat) Empty() bool {
	return !b.HasAlign && !b.HasIndent
}

// Block resolves text-align and margins. Both margins set to auto center the
// block, otherwise pixel margin-left becomes stepped left indent.
func (d Declarations) Block() BlockFormat {
	var b BlockFormat
	if _, ok := d["text-align"]; ok {
		b.HasAlign = true
		switch d.Keyword("text-align") {
		case "center":
			b.Align = AlignCenter
		case "right":
			b.Align = AlignRight
		case "justify":
			b.Align = AlignJustify
		default:
			b.Align = AlignLeft
		}
	}

	if d.Keyword("margin-left") == "auto" && d.Keyword("margin-right") == "auto" {
		b.Align, b.HasAlign = AlignCenter, true
		return b
	}
	if v, ok := d["margin-left"]; ok && v.Unit == "px" {
		b.Indent = LeftIndent(v.Value)
		b.HasIndent = true
	}
	return b
}

// LeftIndent converts pixel margin to indent in inches.
func LeftIndent(px float64) float64 {
	steps := math.Floor(math.Max(px, 0) / 10)
	return math.Min(steps*IndentStep, MaxIndent)
}

// RunFormat is character level effect of inline style.
type RunFormat struct {
	Color     Color
	HasColor  bool
	Highlight bool
}

// Run resolves color and background-color. Only presence of background color
// matters since highlight palette is fixed.
func (d Declarations) Run() RunFormat {
	var r RunFormat
	if v, ok := d["color"]; ok {
		r.Color, r.HasColor = ParseColor(v.Raw), true
	}
	if _, ok := d["background-color"]; ok {
		r.Highlight = true
	}
	return r
}

// TableFormat is table level effect of inline style.
type TableFormat struct {
	BlockFormat
	FontFamily string
	Collapse   bool
}

func (d Declarations) Table() TableFormat {
	t := TableFormat{BlockFormat: d.Block()}
	if v, ok := d["font-family"]; ok {
		t.FontFamily = FirstFamily(v.Raw)
	}
	t.Collapse = d.Keyword("border-collapse") == "collapse"
	return t
}

// FirstFamily returns first family name from font-family list.
func FirstFamily(list string) string {
	first, _, _ := strings.Cut(list, ",")
	return strings.TrimSpace(unquote(strings.TrimSpace(first)))
}

// PageBreak reports whether block requests explicit page break.
func (d Declarations) PageBreak() bool {
	return d.Keyword("page-break-after") == "always" || d.Keyword("page-break-before") == "always"
}
