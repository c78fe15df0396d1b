package extractors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps formats to extractors, preferring higher priority.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.Format][]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.Format][]driven.Extractor),
	}
}

// Register adds an extractor. Extractors for the same format are kept
// sorted by descending priority; ties keep registration order.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	format := extractor.Format()
	list := append(r.extractors[format], extractor)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority() > list[j].Priority()
	})
	r.extractors[format] = list
}

// Get returns the preferred extractor for a format.
func (r *Registry) Get(format domain.Format) (driven.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.extractors[format]
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	return list[0], nil
}

// Detect picks a registered format for the source.
func (r *Registry) Detect(name string, head []byte) (domain.Format, error) {
	format := domain.DetectFormat(name, head)
	if format == domain.FormatUnknown {
		return domain.FormatUnknown, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.extractors[format]) == 0 {
		return domain.FormatUnknown, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedFormat, format)
	}
	return format, nil
}

// Formats returns the registered formats in canonical order.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]domain.Format, 0, len(r.extractors))
	for _, f := range domain.AllFormats() {
		if len(r.extractors[f]) > 0 {
			formats = append(formats, f)
		}
	}
	return formats
}
