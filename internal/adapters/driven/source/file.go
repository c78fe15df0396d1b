package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// Ensure FileSource implements the interface.
var _ domain.SourceDescriptor = (*FileSource)(nil)

// FileSource reads a file from the local file system.
type FileSource struct {
	path string
}

// NewFile creates a source for the file at path.
func NewFile(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Size returns the file size. Directories and missing files are errors.
func (s *FileSource) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, mapError(s.path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", domain.ErrSourceUnreadable, s.path)
	}
	return info.Size(), nil
}

// Open opens the file for reading.
func (s *FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, mapError(s.path, err)
	}
	return f, nil
}

func mapError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: permission denied", domain.ErrSourceUnreadable, path)
	default:
		return fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
	}
}
