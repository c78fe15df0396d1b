package source

import (
	"bytes"
	"io"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// Ensure BytesSource implements the interface.
var _ domain.SourceDescriptor = (*BytesSource)(nil)

// BytesSource serves in-memory content under a caller-chosen name.
// The name's extension drives format detection.
type BytesSource struct {
	name string
	data []byte
}

// NewBytes creates a source over data.
func NewBytes(name string, data []byte) *BytesSource {
	return &BytesSource{name: name, data: data}
}

// NewString creates a source over text.
func NewString(name, text string) *BytesSource {
	return NewBytes(name, []byte(text))
}

// Name returns the source name.
func (s *BytesSource) Name() string {
	return s.name
}

// Size returns the content length.
func (s *BytesSource) Size() (int64, error) {
	return int64(len(s.data)), nil
}

// Open returns a reader over the content.
func (s *BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
