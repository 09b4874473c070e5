package docx

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"

	"h2docx/utils/images"
)

const picURI = "http://schemas.openxmlformats.org/drawingml/2006/picture"

// InlinePicture describes picture placed into run.
type InlinePicture struct {
	RelID  string
	Width  Length
	Height Length
}

// AddPicture embeds image into run. When both dimensions are zero native size
// (pixels at image resolution) is used, when one is zero it is computed
// from aspect ratio.
func (r *Run) AddPicture(data []byte, width, height Length) error {
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return fmt.Errorf("unable to add picture: %w", images.ErrUnsupported)
	}
	if width <= 0 || height <= 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("unable to add picture: %w", err)
		}
		width, height = nativeSize(data, cfg.Width, cfg.Height, width, height)
	}

	relID := r.doc.addMedia(data, kind.MIME.Value, kind.Extension)
	r.doc.nextPict++
	r.el.AddChild(drawing(r.doc.nextPict, relID, width, height))
	return nil
}

func nativeSize(data []byte, pxW, pxH int, width, height Length) (Length, Length) {
	dpiX, dpiY := images.Resolution(data)
	natW, natH := Pixels(float64(pxW), dpiX), Pixels(float64(pxH), dpiY)
	switch {
	case width <= 0 && height <= 0:
		return natW, natH
	case natW == 0 || natH == 0:
		return max(width, 0), max(height, 0)
	case width <= 0:
		return Length(math.Round(float64(natW) * float64(height) / float64(natH))), height
	default:
		return width, Length(math.Round(float64(natH) * float64(width) / float64(natW)))
	}
}

// addMedia stores data once, identical images share the part.
func (d *Document) addMedia(data []byte, mime, ext string) string {
	for _, m := range d.media {
		if bytes.Equal(m.data, data) {
			for _, rel := range d.rels {
				if !rel.external && rel.target == m.name {
					return rel.id
				}
			}
		}
	}
	name := fmt.Sprintf("media/image%d.%s", len(d.media)+1, ext)
	d.media = append(d.media, mediaPart{name: name, mime: mime, data: data})
	return d.addRel(RelImage, name, false)
}

func drawing(id int, relID string, cx, cy Length) *etree.Element {
	ext := func(parent *etree.Element, tag string) {
		el := parent.CreateElement(tag)
		el.CreateAttr("cx", itoa(int64(cx)))
		el.CreateAttr("cy", itoa(int64(cy)))
	}
	name := fmt.Sprintf("Picture %d", id)

	d := etree.NewElement("w:drawing")
	inline := d.CreateElement("wp:inline")
	for _, dist := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(dist, "0")
	}
	ext(inline, "wp:extent")
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", itoa(int64(id)))
	docPr.CreateAttr("name", name)
	inline.CreateElement("wp:cNvGraphicFramePr").CreateElement("a:graphicFrameLocks").CreateAttr("noChangeAspect", "1")

	data := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	data.CreateAttr("uri", picURI)
	pic := data.CreateElement("pic:pic")

	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", relID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pic.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext(xfrm, "a:ext")
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
	return d
}

// Pictures returns pictures placed into run.
func (r *Run) Pictures() []InlinePicture {
	var out []InlinePicture
	for _, d := range childrenByTag(r.el, "w:drawing") {
		inline := d.SelectElement("wp:inline")
		if inline == nil {
			continue
		}
		pic := InlinePicture{
			Width:  Length(attrInt(inline.SelectElement("wp:extent"), "cx")),
			Height: Length(attrInt(inline.SelectElement("wp:extent"), "cy")),
		}
		if blip := inline.FindElement(".//a:blip"); blip != nil {
			pic.RelID = blip.SelectAttrValue("r:embed", "")
		}
		out = append(out, pic)
	}
	return out
}
