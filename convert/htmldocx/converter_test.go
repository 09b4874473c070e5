package htmldocx

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"h2docx/config"
	"h2docx/docx"
	"h2docx/fetch"
	"h2docx/utils/images"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("unable to encode image: %v", err)
	}
	return buf.Bytes()
}

func convert(t *testing.T, opts Options, markup string) *docx.Document {
	t.Helper()
	doc, err := New(opts, nil, zaptest.NewLogger(t)).ConvertDocument(context.Background(), markup)
	if err != nil {
		t.Fatalf("ConvertDocument() error = %v", err)
	}
	return doc
}

func paragraphTexts(c docx.Container) []string {
	var out []string
	for _, p := range c.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}

func firstPicture(t *testing.T, doc *docx.Document) docx.InlinePicture {
	t.Helper()
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			if pics := r.Pictures(); len(pics) > 0 {
				return pics[0]
			}
		}
	}
	t.Fatal("document has no pictures")
	return docx.InlinePicture{}
}

func TestConvert_Whitespace(t *testing.T) {
	doc := convert(t, DefaultOptions(), "<p>  a\n\n b  </p>\n\n<p>x\u00a0 y</p>")
	got := paragraphTexts(doc)
	want := []string{"a b", "x\u00a0 y"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("paragraphs = %q, want %q", got, want)
	}
}

func TestConvert_Emphasis(t *testing.T) {
	for _, markup := range []string{
		"<p><b><i>x</i></b></p>",
		"<p><i><b>x</b></i></p>",
		"<p><strong><em>x</em></strong></p>",
	} {
		doc := convert(t, DefaultOptions(), markup)
		ps := doc.Paragraphs()
		if len(ps) != 1 {
			t.Fatalf("%s: expected 1 paragraph, got %d", markup, len(ps))
		}
		var r *docx.Run
		for _, run := range ps[0].Runs() {
			if run.Text() == "x" {
				r = run
			}
		}
		if r == nil {
			t.Fatalf("%s: text run not found", markup)
		}
		if !r.Bold() || !r.Italic() {
			t.Errorf("%s: bold=%v italic=%v, want both", markup, r.Bold(), r.Italic())
		}
	}

	doc := convert(t, DefaultOptions(), "<p><u>u</u><s>s</s><sup>2</sup><code>c</code></p>")
	runs := map[string]*docx.Run{}
	for _, r := range doc.Paragraphs()[0].Runs() {
		runs[r.Text()] = r
	}
	if !runs["u"].Underline() || !runs["s"].Strike() || !runs["2"].Superscript() {
		t.Error("underline, strike or superscript is missing")
	}
	if runs["c"].Font() != monospaceFont {
		t.Errorf("code font = %q", runs["c"].Font())
	}
}

func TestConvert_Lists(t *testing.T) {
	doc := convert(t, DefaultOptions(), "<ul><li>a</li><li>b<ol><li>c</li></ol></li></ul>")
	ps := doc.Paragraphs()
	if len(ps) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(ps), paragraphTexts(doc))
	}
	tests := []struct {
		text, style string
		indent      docx.Length
	}{
		{"a", "List Bullet", docx.Inches(0.5)},
		{"b", "List Bullet", docx.Inches(0.5)},
		{"c", "List Number", docx.Inches(1)},
	}
	for i, tt := range tests {
		p := ps[i]
		if p.Text() != tt.text || p.Style() != tt.style || p.LeftIndent() != tt.indent {
			t.Errorf("paragraph %d = %q/%q/%d, want %q/%q/%d", i, p.Text(), p.Style(), p.LeftIndent(), tt.text, tt.style, tt.indent)
		}
		if p.LineSpacing() != 1 {
			t.Errorf("paragraph %d line spacing = %v", i, p.LineSpacing())
		}
	}
}

func TestConvert_ListIndentLimit(t *testing.T) {
	if got := listIndent(12); got != 5.5 {
		t.Errorf("listIndent(12) = %v", got)
	}
	if got := listIndent(20); got != 5.5 {
		t.Errorf("listIndent(20) = %v", got)
	}

	doc := convert(t, DefaultOptions(), strings.Repeat("<ul><li>x", 12))
	ps := doc.Paragraphs()
	if len(ps) != 12 {
		t.Fatalf("expected 12 list items, got %d", len(ps))
	}
	if got := ps[len(ps)-1].LeftIndent(); got != docx.Inches(5.5) {
		t.Errorf("deepest indent = %v in", got.Inches())
	}
}

func TestConvert_Headings(t *testing.T) {
	doc := convert(t, DefaultOptions(), "<h1>One</h1><h3>Three</h3><p>body</p>")
	ps := doc.Paragraphs()
	if len(ps) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(ps))
	}
	if ps[0].Style() != "Heading 1" || ps[1].Style() != "Heading 3" || ps[2].Style() != "" {
		t.Errorf("styles = %q %q %q", ps[0].Style(), ps[1].Style(), ps[2].Style())
	}
}

func TestConvert_Table(t *testing.T) {
	markup := `<table style="border-collapse: collapse">
<tr><th>h</th><td>a</td><td>b</td></tr>
<tr><td>1</td><td>2</td><td>3</td></tr>
</table><p>after</p>`
	doc := convert(t, DefaultOptions(), markup)

	tables := doc.Tables()
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	tbl := tables[0]
	if tbl.Rows() != 2 || tbl.Cols() != 3 {
		t.Fatalf("table is %dx%d, want 2x3", tbl.Rows(), tbl.Cols())
	}
	want := [][]string{{"h", "a", "b"}, {"1", "2", "3"}}
	for r, row := range want {
		for c, text := range row {
			cell, err := tbl.Cell(r, c)
			if err != nil {
				t.Fatalf("Cell(%d,%d) error = %v", r, c, err)
			}
			if cell.Text() != text {
				t.Errorf("cell(%d,%d) = %q, want %q", r, c, cell.Text(), text)
			}
			if b, ok := cell.Border("top"); !ok || b != cellBorder {
				t.Errorf("cell(%d,%d) border = %+v", r, c, b)
			}
		}
	}
	header, _ := tbl.Cell(0, 0)
	if r := firstRun(header); r == nil || !r.Bold() {
		t.Error("header cell text should be bold")
	}
	plain, _ := tbl.Cell(0, 1)
	if r := firstRun(plain); r == nil || r.Bold() {
		t.Error("data cell text should not be bold")
	}

	if got := paragraphTexts(doc); len(got) != 1 || got[0] != "after" {
		t.Errorf("body paragraphs = %q", got)
	}
}

func TestConvert_NestedTable(t *testing.T) {
	markup := `<table><tr><td>outer<table><tr><td>inner</td></tr></table></td><td>x</td></tr></table>
<table><tr><td>second</td></tr></table>`
	doc := convert(t, DefaultOptions(), markup)

	tables := doc.Tables()
	if len(tables) != 2 {
		t.Fatalf("expected 2 top level tables, got %d", len(tables))
	}
	cell, _ := tables[0].Cell(0, 0)
	nested := cell.Tables()
	if len(nested) != 1 || nested[0].Rows() != 1 || nested[0].Cols() != 1 {
		t.Fatalf("nested tables = %d", len(nested))
	}
	inner, _ := nested[0].Cell(0, 0)
	if inner.Text() != "inner" {
		t.Errorf("inner cell = %q", inner.Text())
	}
	second, _ := tables[1].Cell(0, 0)
	if second.Text() != "second" {
		t.Errorf("second table cell = %q, tables are out of order", second.Text())
	}
}

func TestConvert_TableDepthLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTableDepth = 1
	doc := convert(t, opts, `<table><tr><td><table><tr><td>a</td><td>b</td></tr></table></td></tr></table>`)

	cell, _ := doc.Tables()[0].Cell(0, 0)
	if len(cell.Tables()) != 0 {
		t.Fatal("table beyond depth limit must not be expanded")
	}
	if got := cell.Text(); got != "a\tb" {
		t.Errorf("flattened table = %q", got)
	}
}

func TestConvert_EmptyTable(t *testing.T) {
	doc := convert(t, DefaultOptions(), `<table></table><p>x</p>`)
	if len(doc.Tables()) != 0 {
		t.Error("empty table must be skipped")
	}
	if got := paragraphTexts(doc); len(got) != 1 || got[0] != "x" {
		t.Errorf("paragraphs = %q", got)
	}
}

func TestConvert_TablesDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Tables = false
	doc := convert(t, opts, `<table><tr><td>a</td></tr></table>`)
	if len(doc.Tables()) != 0 {
		t.Error("tables must not be created")
	}
	if got := paragraphTexts(doc); len(got) != 1 || got[0] != "a" {
		t.Errorf("table text = %q", got)
	}
}

func TestConvert_Colors(t *testing.T) {
	doc := convert(t, DefaultOptions(), `<p><span style="color: rgb(10,20,30)">a</span>`+
		`<span style="color: #0A141E; background-color: yellow">b</span>`+
		`<span style="color: teal">c</span></p>`)
	runs := map[string]*docx.Run{}
	for _, r := range doc.Paragraphs()[0].Runs() {
		runs[r.Text()] = r
	}
	if runs["a"].Color() != "0A141E" || runs["b"].Color() != "0A141E" {
		t.Errorf("colors = %q %q", runs["a"].Color(), runs["b"].Color())
	}
	if runs["b"].Highlight() != "lightGray" {
		t.Errorf("highlight = %q", runs["b"].Highlight())
	}
	if runs["c"].Color() != "000000" {
		t.Errorf("unsupported color = %q, want 000000", runs["c"].Color())
	}

	opts := DefaultOptions()
	opts.InlineStyles = false
	doc = convert(t, opts, `<p><span style="color: rgb(10,20,30)">a</span></p>`)
	if c := doc.Paragraphs()[0].Runs()[1].Color(); c != "" {
		t.Errorf("inline styles disabled but color = %q", c)
	}
}

func TestConvert_BlockStyle(t *testing.T) {
	doc := convert(t, DefaultOptions(), `<p style="text-align: center; margin-left: 50px">x</p>`)
	p := doc.Paragraphs()[0]
	if p.Alignment() != docx.AlignCenter {
		t.Errorf("alignment = %v", p.Alignment())
	}
	if p.LeftIndent() != docx.Inches(1.25) {
		t.Errorf("indent = %v in", p.LeftIndent().Inches())
	}
}

func TestConvert_Watermark(t *testing.T) {
	markup := `<p>body</p><div id="page-watermark">first</div><div id="page-watermark"> DRAFT
copy </div>`
	doc := convert(t, DefaultOptions(), markup)
	if !doc.HasFooter() {
		t.Fatal("watermark footer was not created")
	}
	footer, _ := doc.Footer(0)
	ps := footer.Paragraphs()
	if len(ps) != 1 {
		t.Fatalf("footer paragraphs = %d", len(ps))
	}
	p := ps[0]
	if p.Text() != "DRAFT copy" || p.Alignment() != docx.AlignCenter {
		t.Errorf("footer = %q aligned %v", p.Text(), p.Alignment())
	}
	r := p.Runs()[0]
	if r.Font() != "Arial" || r.Size() != docx.Pt(36) || r.Color() != "808080" {
		t.Errorf("watermark run = %q %v %q", r.Font(), r.Size().Pt(), r.Color())
	}

	doc = convert(t, DefaultOptions(), `<div id="other">x</div><div id="watermark"> </div>`)
	if doc.HasFooter() {
		t.Error("no footer expected without watermark text")
	}
}

func TestConvert_Title(t *testing.T) {
	doc := convert(t, DefaultOptions(), "<html><head><title> My\n page </title><script>var x;</script></head><body><p>x</p></body></html>")
	if doc.Properties.Title != "My page" {
		t.Errorf("title = %q", doc.Properties.Title)
	}
	if got := paragraphTexts(doc); len(got) != 1 || got[0] != "x" {
		t.Errorf("head content leaked: %q", got)
	}
}

func TestConvert_SkippedContent(t *testing.T) {
	doc := convert(t, DefaultOptions(), `<p>a</p><script>document.write("<p>b</p>")</script><style>p {}</style><template><table><tr><td>t</td></tr></table></template><table><tr><td>c</td></tr></table>`)
	if got := paragraphTexts(doc); len(got) != 1 || got[0] != "a" {
		t.Errorf("paragraphs = %q", got)
	}
	tables := doc.Tables()
	if len(tables) != 1 {
		t.Fatalf("tables = %d", len(tables))
	}
	if cell, _ := tables[0].Cell(0, 0); cell.Text() != "c" {
		t.Errorf("table cell = %q", cell.Text())
	}
}

func TestConvert_Breaks(t *testing.T) {
	doc := convert(t, DefaultOptions(), `<p>a<br>b</p><div style="page-break-after: always"></div><p>c</p><hr>`)
	ps := doc.Paragraphs()
	if len(ps) != 4 {
		t.Fatalf("expected 4 paragraphs, got %d: %q", len(ps), paragraphTexts(doc))
	}
	lines := 0
	for _, r := range ps[0].Runs() {
		lines += r.Breaks(docx.BreakLine)
	}
	if lines != 1 || ps[0].Text() != "a\nb" {
		t.Errorf("line breaks = %d, text %q", lines, ps[0].Text())
	}
	if r := ps[1].Runs(); len(r) != 1 || r[0].Breaks(docx.BreakPage) != 1 {
		t.Error("page break paragraph expected")
	}
	if ps[2].Text() != "c" {
		t.Errorf("paragraph after break = %q", ps[2].Text())
	}
	if !ps[3].HasBorder("bottom") {
		t.Error("horizontal rule should have bottom border")
	}
}

func TestConvert_Pre(t *testing.T) {
	doc := convert(t, DefaultOptions(), "<pre>a  b\tc</pre>")
	p := doc.Paragraphs()[0]
	if p.Text() != "a  b\tc" {
		t.Errorf("pre text = %q", p.Text())
	}
	runs := p.Runs()
	if runs[len(runs)-1].Font() != monospaceFont {
		t.Error("pre text should use monospace font")
	}
}

func TestConvert_Hyperlink(t *testing.T) {
	doc := convert(t, DefaultOptions(), `<p>see <a href="https://example.com/x">link</a> <a>plain</a></p>`)
	p := doc.Paragraphs()[0]
	links := p.Hyperlinks()
	if len(links) != 1 {
		t.Fatalf("hyperlinks = %d", len(links))
	}
	if links[0].Target != "https://example.com/x" || links[0].Text != "link" {
		t.Errorf("hyperlink = %+v", links[0])
	}
	if p.Text() != "seelinkplain" {
		t.Errorf("paragraph text = %q", p.Text())
	}
}

func TestConvert_NoRepair(t *testing.T) {
	opts := DefaultOptions()
	opts.RepairHTML = false
	doc := convert(t, opts, `<title>t</title><p><b>x</b></p><table><tr><td>c</td></tr></table><div id="watermark">w</div>`)
	if doc.Properties.Title != "" || doc.HasFooter() || len(doc.Tables()) != 0 {
		t.Error("title, watermark and tables require repaired markup")
	}
	got := paragraphTexts(doc)
	if len(got) == 0 || got[0] != "t" {
		t.Errorf("paragraphs = %q", got)
	}
}

func TestConvert_Styles(t *testing.T) {
	opts := DefaultOptions()
	opts.ParagraphStyle = "No Spacing"
	opts.TableStyle = "Table Grid"
	conv := New(opts, nil, zaptest.NewLogger(t))

	doc := docx.New()
	markup := `<p>a</p><table><tr><td>b</td></tr></table>`
	for range 2 {
		if err := conv.ConvertInto(context.Background(), markup, doc, nil); err != nil {
			t.Fatalf("ConvertInto() error = %v", err)
		}
	}
	for _, p := range doc.Paragraphs() {
		if p.Style() != "No Spacing" {
			t.Errorf("paragraph style = %q", p.Style())
		}
	}
	tables := doc.Tables()
	if len(tables) != 2 {
		t.Fatalf("tables = %d", len(tables))
	}
	for _, tbl := range tables {
		if tbl.Style() != "Table Grid" {
			t.Errorf("table style = %q", tbl.Style())
		}
	}
}

func TestConvert_Errors(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	opts := DefaultOptions()
	opts.TableStyle = "Fancy"
	_, err := New(opts, nil, log).Convert(ctx, "<p>x</p>")
	var se *docx.StyleError
	if !errors.As(err, &se) || se.Name != "Fancy" {
		t.Errorf("expected StyleError, got %v", err)
	}

	conv := New(DefaultOptions(), nil, log)
	if err := conv.ConvertInto(ctx, "<p>x</p>", nil, nil); !errors.Is(err, docx.ErrInvalidTarget) {
		t.Errorf("nil document: %v", err)
	}
	other := docx.New()
	tbl, err := other.AddTable(1, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	cell, _ := tbl.Cell(0, 0)
	if err := conv.ConvertInto(ctx, "<p>x</p>", docx.New(), cell); !errors.Is(err, docx.ErrInvalidTarget) {
		t.Errorf("foreign cell: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := conv.Convert(cancelled, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: %v", err)
	}
}

func TestConvertInto_Cell(t *testing.T) {
	doc := docx.New()
	tbl, _ := doc.AddTable(1, 2, "")
	conv := New(DefaultOptions(), nil, zaptest.NewLogger(t))

	cell, _ := tbl.Cell(0, 0)
	if err := conv.ConvertInto(context.Background(), "<h1>T</h1><p>x</p>", doc, cell); err != nil {
		t.Fatalf("ConvertInto() error = %v", err)
	}
	if cell.Text() != "T\nx" {
		t.Errorf("cell text = %q", cell.Text())
	}
	if s := cell.Paragraphs()[0].Style(); s != "" {
		t.Errorf("heading inside cell should be plain paragraph, style %q", s)
	}

	empty, _ := tbl.Cell(0, 1)
	if err := conv.ConvertInto(context.Background(), "", doc, empty); err != nil {
		t.Fatalf("ConvertInto() error = %v", err)
	}
	if len(empty.Paragraphs()) != 1 {
		t.Error("empty cell should get a paragraph")
	}
}

func TestConvert_Package(t *testing.T) {
	data, err := New(DefaultOptions(), nil, zaptest.NewLogger(t)).Convert(context.Background(), "<p>x</p>")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("result is not a zip archive")
	}
}

func TestImage_DataURI(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngImage(t, 144, 72))
	doc := convert(t, DefaultOptions(), `<p>a<img src="`+src+`">b</p>`)

	if got := paragraphTexts(doc); len(got) != 3 || got[0] != "a" || got[2] != "b" {
		t.Errorf("paragraphs = %q", got)
	}
	pic := firstPicture(t, doc)
	if pic.Width != docx.Inches(2) || pic.Height != docx.Inches(1) {
		t.Errorf("picture = %vx%v in", pic.Width.Inches(), pic.Height.Inches())
	}
}

func TestImage_RequestedSize(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngImage(t, 144, 72))
	tests := []struct {
		attrs string
		w, h  docx.Length
	}{
		{`width="72"`, docx.Inches(1), docx.Inches(0.5)},
		{`height="36px"`, docx.Inches(1), docx.Inches(0.5)},
		{`width="72" height="72"`, docx.Inches(1), docx.Inches(1)},
		{`width="50%"`, docx.Inches(2), docx.Inches(1)},
		{`width="7200"`, docx.UsableWidth, docx.Inches(2.9)},
	}
	for _, tt := range tests {
		doc := convert(t, DefaultOptions(), `<img src="`+src+`" `+tt.attrs+`>`)
		pic := firstPicture(t, doc)
		if pic.Width != tt.w || pic.Height != tt.h {
			t.Errorf("%s: picture = %vx%v in", tt.attrs, pic.Width.Inches(), pic.Height.Inches())
		}
	}
}

func TestFitPage(t *testing.T) {
	tests := []struct {
		w, h, ww, wh docx.Length
	}{
		{docx.Inches(1), docx.Inches(1), docx.Inches(1), docx.Inches(1)},
		{docx.Inches(11.6), docx.Inches(1), docx.UsableWidth, docx.Inches(0.5)},
		{docx.Inches(1), docx.Inches(16.2), docx.Inches(0.5), docx.UsableHeight},
		{docx.Inches(11.6), docx.Inches(81), docx.Inches(1.16), docx.UsableHeight},
	}
	for _, tt := range tests {
		w, h := fitPage(tt.w, tt.h)
		if w != tt.ww || h != tt.wh {
			t.Errorf("fitPage(%v, %v) = %v, %v", tt.w.Inches(), tt.h.Inches(), w.Inches(), h.Inches())
		}
	}
}

func TestImage_Text(t *testing.T) {
	tests := []struct {
		markup string
		want   string
	}{
		{`<img>`, "<image>"},
		{`<img src="pics/a.png">`, "<image: a.png>"},
		{`<img src="ftp://host/b.png">`, "<image: b.png>"},
	}
	for _, tt := range tests {
		doc := convert(t, DefaultOptions(), tt.markup)
		if got := paragraphTexts(doc); len(got) != 1 || got[0] != tt.want {
			t.Errorf("%s: paragraphs = %q, want %q", tt.markup, got, tt.want)
		}
	}

	opts := DefaultOptions()
	opts.Images = false
	if doc := convert(t, opts, `<img src="x.png"><p>a</p>`); len(doc.Paragraphs()) != 1 || doc.Media() != 0 {
		t.Error("images disabled but img produced content")
	}
}

func TestImage_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "img"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "img", "a.png"), pngImage(t, 72, 72), 0644); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Base = dir

	doc := convert(t, opts, `<img src="img/a.png"><img src="../../etc/passwd"><img src="missing.png">`)
	if doc.Media() != 1 {
		t.Errorf("media = %d, want 1", doc.Media())
	}
	texts := paragraphTexts(doc)
	if len(texts) != 3 || texts[1] != "<image: passwd>" || texts[2] != "<image: missing.png>" {
		t.Errorf("paragraphs = %q", texts)
	}
}

func TestImage_Broken(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image"))
	doc := convert(t, DefaultOptions(), `<img src="`+src+`">`)

	placeholder, err := images.Placeholder()
	if err != nil {
		t.Fatal(err)
	}
	data, ok := doc.MediaData(firstPicture(t, doc).RelID)
	if !ok || !bytes.Equal(data, placeholder.Data) {
		t.Error("broken image should be replaced with placeholder")
	}
}

func TestImage_FetchFailure(t *testing.T) {
	var hits atomic.Int32
	good := pngImage(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/ok.png" {
			w.Write(good)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	log := zaptest.NewLogger(t)
	client := fetch.New(&config.FetchConfig{Attempts: 3, Backoff: time.Millisecond, MaxSize: 1 << 20}, log)
	opts := DefaultOptions()
	opts.Base = srv.URL + "/pages/"
	conv := New(opts, client, log)

	doc, err := conv.ConvertDocument(context.Background(), `<img src="`+srv.URL+`/broken.png"><img src="/ok.png">`)
	if err != nil {
		t.Fatalf("ConvertDocument() error = %v", err)
	}
	if got := hits.Load(); got != 4 {
		t.Errorf("server hits = %d, want 4", got)
	}
	placeholder, _ := images.Placeholder()

	var media [][]byte
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			for _, pic := range r.Pictures() {
				data, _ := doc.MediaData(pic.RelID)
				media = append(media, data)
			}
		}
	}
	if len(media) != 2 {
		t.Fatalf("pictures = %d, want 2", len(media))
	}
	if !bytes.Equal(media[0], placeholder.Data) {
		t.Error("failed download should be replaced with placeholder")
	}
	if !bytes.Equal(media[1], good) {
		t.Error("relative reference should be resolved against base url")
	}
}

func TestImage_NoFetcher(t *testing.T) {
	doc := convert(t, DefaultOptions(), `<img src="https://example.invalid/a.png">`)
	placeholder, _ := images.Placeholder()
	data, ok := doc.MediaData(firstPicture(t, doc).RelID)
	if !ok || !bytes.Equal(data, placeholder.Data) {
		t.Error("remote image without fetcher should be replaced with placeholder")
	}
}

func TestImage_InsideBlock(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngImage(t, 72, 72))
	tests := []struct {
		name   string
		markup string
		style  string
		indent docx.Length
		align  docx.Alignment
	}{
		{"list item", `<ul><li>one <img src="` + src + `"> two</li></ul><p>after</p>`, "List Bullet", docx.Inches(0.5), docx.AlignLeft},
		{"styled paragraph", `<p style="text-align: right; margin-left: 20px">one <img src="` + src + `"> two</p><p>after</p>`, "", docx.Inches(0.5), docx.AlignRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := convert(t, DefaultOptions(), tt.markup)
			ps := doc.Paragraphs()
			if got := paragraphTexts(doc); len(got) != 4 || got[0] != "one" || got[1] != "" || got[2] != "two" || got[3] != "after" {
				t.Fatalf("paragraphs = %q", got)
			}
			for _, i := range []int{0, 2} {
				p := ps[i]
				if p.Style() != tt.style || p.LeftIndent() != tt.indent || p.Alignment() != tt.align {
					t.Errorf("paragraph %d = %q/%v/%v, want %q/%v/%v", i, p.Style(), p.LeftIndent().Inches(), p.Alignment(),
						tt.style, tt.indent.Inches(), tt.align)
				}
			}
			if len(ps[1].Runs()) == 0 || len(ps[1].Runs()[0].Pictures()) != 1 {
				t.Error("picture paragraph expected between parts of the element")
			}
			if p := ps[3]; p.Style() != "" || p.LeftIndent() != 0 {
				t.Errorf("paragraph after closed element inherited %q/%v", p.Style(), p.LeftIndent().Inches())
			}
		})
	}
}

func TestImage_NetworkPathReference(t *testing.T) {
	good := pngImage(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(good)
	}))
	defer srv.Close()
	host := strings.TrimPrefix(srv.URL, "http://")

	// local file with the same path must not be used
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), pngImage(t, 20, 20), 0644); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Base = dir
	doc := convert(t, opts, `<img src="//cdn.example.invalid/a.png">`)
	placeholder, _ := images.Placeholder()
	if data, ok := doc.MediaData(firstPicture(t, doc).RelID); !ok || !bytes.Equal(data, placeholder.Data) {
		t.Error("network path reference with directory base should not be read from disk")
	}

	log := zaptest.NewLogger(t)
	client := fetch.New(&config.FetchConfig{Attempts: 1, Backoff: time.Millisecond, MaxSize: 1 << 20}, log)
	opts.Base = srv.URL + "/pages/"
	doc, err := New(opts, client, log).ConvertDocument(context.Background(), `<img src="//`+host+`/a.png">`)
	if err != nil {
		t.Fatalf("ConvertDocument() error = %v", err)
	}
	if data, ok := doc.MediaData(firstPicture(t, doc).RelID); !ok || !bytes.Equal(data, good) {
		t.Error("network path reference should use scheme of remote base")
	}
}

func elementXML(t *testing.T, el *etree.Element) string {
	t.Helper()
	if el == nil {
		return ""
	}
	d := etree.NewDocument()
	d.SetRoot(el.Copy())
	s, err := d.WriteToString()
	if err != nil {
		t.Fatalf("unable to serialize %s: %v", el.Tag, err)
	}
	return s
}

func TestConvert_StyleResolutionIsStable(t *testing.T) {
	style := `text-align: center; margin-left: 30px; color: rgb(200,0,0); background-color: yellow`
	markup := `<p style="` + style + `"><span style="` + style + `">x</span></p>` +
		`<p style="` + style + `"><span style="` + style + `">x</span></p>`
	doc := convert(t, DefaultOptions(), markup)

	ps := doc.Paragraphs()
	if len(ps) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(ps))
	}
	first, second := ps[0].Element().SelectElement("w:pPr"), ps[1].Element().SelectElement("w:pPr")
	if first == nil || elementXML(t, first) != elementXML(t, second) {
		t.Errorf("paragraph properties differ:\n%s\n%s", elementXML(t, first), elementXML(t, second))
	}

	r1, r2 := ps[0].Runs(), ps[1].Runs()
	if len(r1) != len(r2) || len(r1) == 0 {
		t.Fatalf("runs = %d and %d", len(r1), len(r2))
	}
	for i := range r1 {
		a := elementXML(t, r1[i].Element().SelectElement("w:rPr"))
		b := elementXML(t, r2[i].Element().SelectElement("w:rPr"))
		if a != b {
			t.Errorf("run %d properties differ:\n%s\n%s", i, a, b)
		}
	}
	if last := r1[len(r1)-1]; last.Color() != "C80000" || last.Highlight() == "" {
		t.Errorf("span formatting = %q/%q", last.Color(), last.Highlight())
	}
}

func TestConvert_TableFont(t *testing.T) {
	markup := `<table style="font-family: 'Courier New', monospace">
<tr><th>h</th><td><p>a</p><p>b</p></td></tr>
<tr><td><i>1</i></td><td>2</td></tr>
</table>`
	doc := convert(t, DefaultOptions(), markup)
	for i, cell := range doc.Tables()[0].Cells() {
		r := firstRun(cell)
		if r == nil {
			t.Fatalf("cell %d has no runs", i)
		}
		if r.Font() != "Courier New" {
			t.Errorf("cell %d first run font = %q", i, r.Font())
		}
	}
}
