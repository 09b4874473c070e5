package htmldocx

// skipping suppresses all output until matching close of tag.
type skipping struct {
	tag     string
	pending int // nested opens of the same tag not closed yet
}

// skipState is either normal (nil) or skipping.
type skipState struct {
	cur *skipping
}

func (s *skipState) active() bool {
	return s.cur != nil
}

func (s *skipState) enter(tag string) {
	s.cur = &skipping{tag: tag}
}

func (s *skipState) open(tag string) {
	if s.cur != nil && s.cur.tag == tag {
		s.cur.pending++
	}
}

// close reports whether skip region ended with this tag.
func (s *skipState) close(tag string) bool {
	if s.cur == nil || s.cur.tag != tag {
		return false
	}
	if s.cur.pending > 0 {
		s.cur.pending--
		return false
	}
	s.cur = nil
	return true
}
