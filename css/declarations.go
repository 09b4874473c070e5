package css

import (
	"strings"
)

// Declarations holds inline style properties keyed by lower case name.
type Declarations map[string]Value

// ParseDeclarations splits inline style attribute into declarations. Parsing
// never fails: fragments without colon or property name are dropped and later
// duplicates win.
func ParseDeclarations(style string) Declarations {
	decls := make(Declarations)
	for fragment := range strings.SplitSeq(style, ";") {
		name, value, found := strings.Cut(fragment, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		decls[name] = ParseValue(value)
	}
	return decls
}

// Get returns declaration value by property name.
func (d Declarations) Get(name string) (Value, bool) {
	v, ok := d[name]
	return v, ok
}

// Keyword returns lower case keyword of the property or empty string.
func (d Declarations) Keyword(name string) string {
	if v, ok := d[name]; ok {
		return v.Keyword
	}
	return ""
}
