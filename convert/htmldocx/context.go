package htmldocx

import (
	"golang.org/x/net/html"

	"h2docx/css"
)

type listKind int

const (
	listUnordered listKind = iota
	listOrdered
)

// contextStack is per engine record of open elements.
type contextStack struct {
	spans []css.Declarations
	lists []listKind
	// all other open elements, last one wins for repeated names
	tags map[string]map[string]string
}

func newContextStack() *contextStack {
	return &contextStack{tags: make(map[string]map[string]string)}
}

func (s *contextStack) pushSpan(decls css.Declarations) {
	s.spans = append(s.spans, decls)
}

func (s *contextStack) popSpan() {
	if len(s.spans) > 0 {
		s.spans = s.spans[:len(s.spans)-1]
	}
}

func (s *contextStack) pushList(kind listKind) {
	s.lists = append(s.lists, kind)
}

// popList removes most recent list of the kind, which is not necessarily on
// top for malformed nesting.
func (s *contextStack) popList(kind listKind) {
	for i := len(s.lists) - 1; i >= 0; i-- {
		if s.lists[i] == kind {
			s.lists = append(s.lists[:i], s.lists[i+1:]...)
			return
		}
	}
}

func (s *contextStack) listDepth() int {
	return len(s.lists)
}

func (s *contextStack) listKind() listKind {
	if len(s.lists) == 0 {
		return listUnordered
	}
	return s.lists[len(s.lists)-1]
}

func (s *contextStack) setTag(name string, attrs map[string]string) {
	s.tags[name] = attrs
}

func (s *contextStack) clearTag(name string) {
	delete(s.tags, name)
}

func (s *contextStack) isOpen(name string) bool {
	_, ok := s.tags[name]
	return ok
}

// href returns target of enclosing anchor.
func (s *contextStack) href() (string, bool) {
	a, ok := s.tags["a"]
	if !ok {
		return "", false
	}
	href, ok := a["href"]
	return href, ok
}

func attrMap(attrs []html.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Namespace == "" {
			m[a.Key] = a.Val
		}
	}
	return m
}
