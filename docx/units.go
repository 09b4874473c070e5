package docx

import (
	"math"
)

// Length is a distance in English Metric Units.
type Length int64

const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700
	emuPerTwip  = 635
)

func Inches(in float64) Length {
	return Length(math.Round(in * EMUPerInch))
}

func Pt(pt float64) Length {
	return Length(math.Round(pt * EMUPerPoint))
}

// Pixels converts pixel count at given resolution.
func Pixels(px, dpi float64) Length {
	if dpi <= 0 {
		dpi = 72
	}
	return Inches(px / dpi)
}

func (l Length) Inches() float64 {
	return float64(l) / EMUPerInch
}

func (l Length) Pt() float64 {
	return float64(l) / EMUPerPoint
}

// Twips returns twentieths of a point used by most paragraph properties.
func (l Length) Twips() int64 {
	return int64(l) / emuPerTwip
}

// HalfPoints returns font size units.
func (l Length) HalfPoints() int64 {
	return int64(math.Round(l.Pt() * 2))
}

func fromTwips(tw int64) Length {
	return Length(tw * emuPerTwip)
}
