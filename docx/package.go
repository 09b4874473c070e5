package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/beevik/etree"

	"h2docx/misc"
)

const (
	ctMain      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ctFooter    = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp       = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"

	nsCP      = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsDCTerms = "http://purl.org/dc/terms/"
	nsXSI     = "http://www.w3.org/2001/XMLSchema-instance"
	nsApp     = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
)

// Page geometry in twips: US Letter, 1in top and bottom, 1.25in sides.
const (
	pageWidth    = 12240
	pageHeight   = 15840
	marginTop    = 1440
	marginSide   = 1800
	marginHeader = 720
)

// WriteTo serializes document as DOCX package.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Bytes returns DOCX package. Document may be modified and serialized again
// afterwards.
func (d *Document) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	parts := []struct {
		name string
		doc  func() *etree.Document
	}{
		{"[Content_Types].xml", d.contentTypesPart},
		{"_rels/.rels", packageRelsPart},
		{"docProps/core.xml", d.corePart},
		{"docProps/app.xml", appPart},
		{"word/document.xml", d.documentPart},
		{"word/styles.xml", stylesPart},
		{"word/numbering.xml", numberingPart},
		{"word/_rels/document.xml.rels", d.documentRelsPart},
	}
	if d.footer != nil {
		parts = append(parts, struct {
			name string
			doc  func() *etree.Document
		}{"word/footer1.xml", d.footerPart})
	}

	for _, p := range parts {
		if err := writeXMLToZip(zw, p.name, p.doc()); err != nil {
			return nil, fmt.Errorf("unable to write %s: %w", p.name, err)
		}
	}
	for _, m := range d.media {
		if err := writeDataToZip(zw, "word/"+m.name, m.data); err != nil {
			return nil, fmt.Errorf("unable to write %s: %w", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize package: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func newXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

func (d *Document) contentTypesPart() *etree.Document {
	doc := newXMLDocument()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", nsCT)

	def := func(ext, ct string) {
		el := types.CreateElement("Default")
		el.CreateAttr("Extension", ext)
		el.CreateAttr("ContentType", ct)
	}
	def("rels", ctRels)
	def("xml", "application/xml")
	seen := map[string]bool{}
	for _, m := range d.media {
		ext := path.Ext(m.name)[1:]
		if !seen[ext] {
			seen[ext] = true
			def(ext, m.mime)
		}
	}

	override := func(name, ct string) {
		el := types.CreateElement("Override")
		el.CreateAttr("PartName", name)
		el.CreateAttr("ContentType", ct)
	}
	override("/word/document.xml", ctMain)
	override("/word/styles.xml", ctStyles)
	override("/word/numbering.xml", ctNumbering)
	if d.footer != nil {
		override("/word/footer1.xml", ctFooter)
	}
	override("/docProps/core.xml", ctCore)
	override("/docProps/app.xml", ctApp)
	return doc
}

func relsPart(rels []relationship) *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsPR)
	for _, r := range rels {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", r.id)
		el.CreateAttr("Type", r.typ)
		el.CreateAttr("Target", r.target)
		if r.external {
			el.CreateAttr("TargetMode", "External")
		}
	}
	return doc
}

func packageRelsPart() *etree.Document {
	return relsPart([]relationship{
		{id: "rId1", typ: relDocument, target: "word/document.xml"},
		{id: "rId2", typ: relCore, target: "docProps/core.xml"},
		{id: "rId3", typ: relApp, target: "docProps/app.xml"},
	})
}

func (d *Document) documentRelsPart() *etree.Document {
	return relsPart(d.rels)
}

func (d *Document) corePart() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("cp:coreProperties")
	root.CreateAttr("xmlns:cp", nsCP)
	root.CreateAttr("xmlns:dc", nsDC)
	root.CreateAttr("xmlns:dcterms", nsDCTerms)
	root.CreateAttr("xmlns:xsi", nsXSI)

	if d.Properties.Title != "" {
		root.CreateElement("dc:title").SetText(d.Properties.Title)
	}
	creator := d.Properties.Creator
	if creator == "" {
		creator = misc.GetAppName()
	}
	root.CreateElement("dc:creator").SetText(creator)
	root.CreateElement("dc:identifier").SetText(d.Properties.Identifier)

	created := d.Properties.Created
	if created.IsZero() {
		created = time.Now()
	}
	el := root.CreateElement("dcterms:created")
	el.CreateAttr("xsi:type", "dcterms:W3CDTF")
	el.SetText(created.UTC().Format(time.RFC3339))
	return doc
}

func appPart() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("Properties")
	root.CreateAttr("xmlns", nsApp)
	root.CreateElement("Application").SetText(misc.GetAppName() + " " + misc.GetVersion())
	return doc
}

func wordRoot(doc *etree.Document, tag string) *etree.Element {
	root := doc.CreateElement(tag)
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)
	return root
}

func (d *Document) documentPart() *etree.Document {
	doc := newXMLDocument()
	body := d.el.Copy()
	closeCells(body)

	sect := body.CreateElement("w:sectPr")
	if d.footer != nil {
		ref := sect.CreateElement("w:footerReference")
		ref.CreateAttr("w:type", "default")
		ref.CreateAttr("r:id", d.footer.relID)
	}
	pgSz := sect.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", itoa(pageWidth))
	pgSz.CreateAttr("w:h", itoa(pageHeight))
	pgMar := sect.CreateElement("w:pgMar")
	for _, m := range []struct {
		side string
		v    int64
	}{
		{"w:top", marginTop}, {"w:right", marginSide}, {"w:bottom", marginTop}, {"w:left", marginSide},
		{"w:header", marginHeader}, {"w:footer", marginHeader}, {"w:gutter", 0},
	} {
		pgMar.CreateAttr(m.side, itoa(m.v))
	}

	wordRoot(doc, "w:document").AddChild(body)
	return doc
}

func (d *Document) footerPart() *etree.Document {
	doc := newXMLDocument()
	ftr := d.footer.el.Copy()
	closeCells(ftr)
	root := wordRoot(doc, "w:ftr")
	for _, c := range ftr.ChildElements() {
		root.AddChild(c)
	}
	if len(root.ChildElements()) == 0 {
		root.CreateElement("w:p")
	}
	return doc
}

// closeCells makes sure every table cell ends with paragraph as schema
// requires.
func closeCells(el *etree.Element) {
	for _, tc := range el.FindElements(".//w:tc") {
		children := tc.ChildElements()
		if len(children) == 0 || children[len(children)-1].FullTag() != "w:p" {
			tc.CreateElement("w:p")
		}
	}
}
