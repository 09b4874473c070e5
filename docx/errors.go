package docx

import (
	"errors"
	"fmt"
)

// ErrInvalidTarget is returned when content is requested to be written into
// something which does not belong to the document.
var ErrInvalidTarget = errors.New("invalid document target")

// StyleError reports named style which is not defined in the document.
type StyleError struct {
	Name string
}

func (e *StyleError) Error() string {
	return fmt.Sprintf("unable to apply style %q: no such style", e.Name)
}
