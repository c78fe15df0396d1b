// Package extractors provides the extractor registry and the built-in
// format extractors. Each sub-package turns one source format into a
// lazy stream of candidate URL strings.
package extractors
