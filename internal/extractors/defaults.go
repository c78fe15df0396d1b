package extractors

import (
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/extractors/delimited"
	"github.com/custodia-labs/linkcheck/internal/extractors/markup"
	"github.com/custodia-labs/linkcheck/internal/extractors/plaintext"
	"github.com/custodia-labs/linkcheck/internal/extractors/spreadsheet"
)

// NewDefaultRegistry returns a registry holding the built-in extractors.
func NewDefaultRegistry(resolver driven.EncodingResolver) *Registry {
	r := NewRegistry()
	r.Register(delimited.New(resolver))
	r.Register(spreadsheet.New())
	r.Register(plaintext.New(resolver))
	r.Register(markup.New(resolver))
	return r
}
