package docx

import (
	"bytes"
	"fmt"

	fixzip "github.com/hidez8891/zip"
)

// RewriteWithoutDataDescriptors copies package unsetting data descriptor flag
// on every entry. Some readers fail on archives using data descriptors.
func RewriteWithoutDataDescriptors(data []byte) ([]byte, error) {
	r, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to read package: %w", err)
	}

	out := new(bytes.Buffer)
	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			return nil, fmt.Errorf("unable to copy %s: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize package: %w", err)
	}
	return out.Bytes(), nil
}
