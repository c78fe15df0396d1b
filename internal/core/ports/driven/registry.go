package driven

import "github.com/custodia-labs/linkcheck/internal/core/domain"

// ExtractorRegistry selects the extractor for a source.
// It keeps the highest-priority extractor registered per format.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// Get returns the preferred extractor for a format.
	// Returns domain.ErrUnsupportedFormat if none is registered.
	Get(format domain.Format) (Extractor, error)

	// Detect picks a registered format from a source name and its first bytes.
	// Returns domain.ErrUnsupportedFormat if nothing matches.
	Detect(name string, head []byte) (domain.Format, error)

	// Formats returns all formats that can be extracted.
	Formats() []domain.Format
}
