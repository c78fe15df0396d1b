package domain

import (
	"fmt"
	"strings"
)

// LocationKind identifies which fields of a Location are meaningful.
type LocationKind string

// Location kinds.
const (
	// LocationTabular addresses a cell by row and column.
	LocationTabular LocationKind = "tabular"

	// LocationLine addresses a line in a plain text file.
	LocationLine LocationKind = "line"

	// LocationMarkup addresses an attribute on a markup element.
	LocationMarkup LocationKind = "markup"
)

// Location records where a Candidate was found.
// Rows, columns and lines are 1-based; ElementIndex is 0-based.
type Location struct {
	// Kind selects the addressing scheme.
	Kind LocationKind

	// Sheet is the worksheet name (spreadsheets only).
	Sheet string

	// Row is the 1-based row number (tabular).
	Row int

	// Column is the 1-based column number (tabular).
	Column int

	// Cell is the A1-style cell reference (spreadsheets only).
	Cell string

	// Line is the 1-based line number (plain text).
	Line int

	// Tag is the lower-cased element name (markup).
	Tag string

	// Attribute is the attribute the value came from (markup).
	// Element text is reported as "#text".
	Attribute string

	// ElementIndex is the ordinal of the URL-bearing element in the document (markup).
	ElementIndex int
}

// TabularAt returns a tabular location.
func TabularAt(row, column int) Location {
	return Location{Kind: LocationTabular, Row: row, Column: column}
}

// LineAt returns a plain text location.
func LineAt(line int) Location {
	return Location{Kind: LocationLine, Line: line}
}

// MarkupAt returns a markup location.
func MarkupAt(tag, attribute string, index int) Location {
	return Location{Kind: LocationMarkup, Tag: tag, Attribute: attribute, ElementIndex: index}
}

// String renders a short human-readable reference.
func (l Location) String() string {
	switch l.Kind {
	case LocationTabular:
		if l.Cell != "" {
			if l.Sheet != "" {
				return l.Sheet + "!" + l.Cell
			}
			return l.Cell
		}
		return fmt.Sprintf("row %d, column %d", l.Row, l.Column)
	case LocationLine:
		return fmt.Sprintf("line %d", l.Line)
	case LocationMarkup:
		return fmt.Sprintf("<%s %s> #%d", l.Tag, l.Attribute, l.ElementIndex)
	default:
		return "unknown"
	}
}

// Candidate is a raw string extracted from a source that might be a URL.
// Candidates are immutable once produced.
type Candidate struct {
	// Raw is the text exactly as extracted.
	Raw string

	// Location is where the text was found.
	Location Location
}

// Preview returns the raw text shortened to max runes with a trailing "...".
func (c Candidate) Preview(max int) string {
	return Truncate(c.Raw, max)
}

// Truncate shortens s to at most max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
