package images

import (
	"bytes"
	"encoding/binary"
)

// DefaultDPI is assumed when image does not carry its resolution.
const DefaultDPI = 72

// DpiType is density unit of JFIF APP0 segment.
type DpiType uint8

const (
	DpiNoUnits DpiType = iota
	DpiPxPerInch
	DpiPxPerSm
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// Resolution returns horizontal and vertical resolution of PNG (pHYs chunk)
// or JPEG (JFIF APP0 density) image. Missing or meaningless values are
// reported as DefaultDPI.
func Resolution(data []byte) (x, y float64) {
	var ok bool
	switch {
	case bytes.HasPrefix(data, pngSignature):
		x, y, ok = pngResolution(data[len(pngSignature):])
	case len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8:
		x, y, ok = jfifResolution(data[2:])
	}
	if !ok || x <= 0 || y <= 0 {
		return DefaultDPI, DefaultDPI
	}
	return x, y
}

func pngResolution(data []byte) (float64, float64, bool) {
	const metersPerInch = 0.0254
	for len(data) >= 12 {
		length := binary.BigEndian.Uint32(data[:4])
		kind := string(data[4:8])
		if uint64(len(data)) < 12+uint64(length) {
			return 0, 0, false
		}
		body := data[8 : 8+length]
		switch kind {
		case "pHYs":
			// unit 1 is meter, 0 means aspect ratio only
			if length != 9 || body[8] != 1 {
				return 0, 0, false
			}
			x := float64(binary.BigEndian.Uint32(body[0:4])) * metersPerInch
			y := float64(binary.BigEndian.Uint32(body[4:8])) * metersPerInch
			return x, y, true
		case "IDAT", "IEND":
			// pHYs must precede image data
			return 0, 0, false
		}
		data = data[12+length:]
	}
	return 0, 0, false
}

func jfifResolution(data []byte) (float64, float64, bool) {
	jfif := []byte{'J', 'F', 'I', 'F', 0x00}
	for len(data) >= 4 && data[0] == 0xFF {
		marker := data[1]
		length := int(binary.BigEndian.Uint16(data[2:4]))
		if length < 2 || len(data) < 2+length {
			return 0, 0, false
		}
		seg := data[4 : 2+length]
		if marker == 0xE0 && len(seg) >= 12 && bytes.HasPrefix(seg, jfif) {
			unit := DpiType(seg[7])
			x := float64(binary.BigEndian.Uint16(seg[8:10]))
			y := float64(binary.BigEndian.Uint16(seg[10:12]))
			switch unit {
			case DpiPxPerInch:
				return x, y, true
			case DpiPxPerSm:
				return x * 2.54, y * 2.54, true
			default:
				return 0, 0, false
			}
		}
		if marker == 0xDA {
			// start of scan, no more headers
			return 0, 0, false
		}
		data = data[2+length:]
	}
	return 0, 0, false
}
