package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Registry manages report writers by name.
type Registry struct {
	mu      sync.RWMutex
	writers map[string]driven.ReportWriter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		writers: make(map[string]driven.ReportWriter),
	}
}

// NewDefaultRegistry returns a registry holding every built-in writer.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewText())
	r.Register(NewCSV())
	r.Register(NewJSON())
	r.Register(NewYAML())
	r.Register(NewXLSX())
	return r
}

// Register adds a writer, replacing any writer with the same name.
func (r *Registry) Register(w driven.ReportWriter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writers[w.Name()] = w
}

// Get returns the writer for name. Lookup is case-insensitive.
func (r *Registry) Get(name string) (driven.ReportWriter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.writers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: report format %q", domain.ErrNotFound, name)
	}
	return w, nil
}

// ForPath picks a writer from a file extension, falling back to text.
func (r *Registry) ForPath(path string) driven.ReportWriter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(path)
	for _, w := range r.writers {
		if strings.HasSuffix(lower, w.Extension()) {
			return w
		}
	}
	return r.writers[textName]
}

// Names returns the registered writer names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
