package domain

import "io"

// SourceDescriptor abstracts where the bytes of a run come from.
// File system access lives in an adapter; the core only sees this interface.
type SourceDescriptor interface {
	// Name identifies the source (a path or a caller-chosen label).
	// Its extension is used for format detection.
	Name() string

	// Size returns the length in bytes, or -1 if unknown.
	Size() (int64, error)

	// Open returns a fresh reader positioned at the start.
	Open() (io.ReadCloser, error)
}
