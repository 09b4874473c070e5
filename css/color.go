package css

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Color is 24 bit RGB color.
type Color struct {
	R, G, B uint8
}

// Black is used for every color value which cannot be understood.
var Black = Color{}

// Hex returns color in "RRGGBB" form used by WordprocessingML.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ParseColor understands "rgb(r, g, b)" and "#RRGGBB" forms, anything else
// (including named colors) resolves to black.
func ParseColor(s string) Color {
	tokens := tokenize(s)
	if len(tokens) == 0 {
		return Black
	}

	switch first := tokens[0]; {
	case first.tt == css.HashToken:
		if len(tokens) != 1 {
			return Black
		}
		return parseHexColor(strings.TrimPrefix(first.data, "#"))
	case first.tt == css.FunctionToken && strings.EqualFold(first.data, "rgb("):
		return parseRGBFunction(tokens[1:])
	}
	return Black
}

func parseHexColor(h string) Color {
	if len(h) != 6 {
		return Black
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Black
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// parseRGBFunction expects exactly three integer components separated by
// commas and closing parenthesis.
func parseRGBFunction(tokens []token) Color {
	var comps []uint8
	expectNumber := true
	for _, t := range tokens {
		switch {
		case t.tt == css.RightParenthesisToken:
			if len(comps) != 3 || expectNumber {
				return Black
			}
			return Color{R: comps[0], G: comps[1], B: comps[2]}
		case t.tt == css.NumberToken && expectNumber:
			n, err := strconv.Atoi(t.data)
			if err != nil || n < 0 || n > 255 {
				return Black
			}
			comps = append(comps, uint8(n))
			expectNumber = false
		case t.tt == css.CommaToken && !expectNumber:
			expectNumber = true
		default:
			return Black
		}
	}
	return Black
}
