// Package css resolves inline style declarations into document formatting.
package css

import (
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "12px", "center", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "px", "pt", "%", etc.
	Keyword string  // Keyword if applicable, lower case
}

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Keyword != "" || v.Raw == "" {
		return false
	}
	first := rune(v.Raw[0])
	return unicode.IsDigit(first) || first == '.' || first == '-' || first == '+'
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

type token struct {
	tt   css.TokenType
	data string
}

// tokenize returns value tokens without whitespace and comments.
func tokenize(s string) []token {
	l := css.NewLexer(parse.NewInputString(s))
	var tokens []token
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return tokens
		case css.WhitespaceToken, css.CommentToken:
			continue
		}
		tokens = append(tokens, token{tt: tt, data: string(data)})
	}
}

// ParseValue classifies single declaration value.
func ParseValue(s string) Value {
	raw := strings.TrimSpace(s)
	val := Value{Raw: raw}

	tokens := tokenize(raw)
	if len(tokens) != 1 {
		// functions and multi-value properties are kept as keyword
		val.Keyword = strings.ToLower(raw)
		return val
	}

	t := tokens[0]
	switch t.tt {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(t.data)
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(t.data, "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(t.data, 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(t.data)
	case css.StringToken:
		val.Keyword = unquote(t.data)
	case css.HashToken:
		val.Keyword = strings.ToLower(t.data)
	default:
		val.Keyword = strings.ToLower(raw)
	}
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
