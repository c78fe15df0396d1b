package domain

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies which extractor handles a source.
type Format string

// Supported formats. FormatUnknown is the zero value.
const (
	FormatUnknown     Format = ""
	FormatDelimited   Format = "delimited"
	FormatSpreadsheet Format = "spreadsheet"
	FormatPlainText   Format = "plaintext"
	FormatMarkup      Format = "markup"
)

// AllFormats lists the supported formats.
func AllFormats() []Format {
	return []Format{FormatDelimited, FormatSpreadsheet, FormatPlainText, FormatMarkup}
}

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatDelimited, FormatSpreadsheet, FormatPlainText, FormatMarkup:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}

// Description returns a human-readable description of the format.
func (f Format) Description() string {
	switch f {
	case FormatDelimited:
		return "Delimited text (CSV, TSV)"
	case FormatSpreadsheet:
		return "Spreadsheet (XLSX)"
	case FormatPlainText:
		return "Plain text, one URL per line"
	case FormatMarkup:
		return "Markup (HTML, XML)"
	default:
		return "Unknown"
	}
}

// Extensions returns the file extensions mapped to the format.
func (f Format) Extensions() []string {
	switch f {
	case FormatDelimited:
		return []string{".csv", ".tsv"}
	case FormatSpreadsheet:
		return []string{".xlsx", ".xlsm", ".xls"}
	case FormatPlainText:
		return []string{".txt", ".text", ".lst", ".log"}
	case FormatMarkup:
		return []string{".html", ".htm", ".xhtml", ".xml"}
	default:
		return nil
	}
}

// ParseFormat resolves a user-supplied format hint.
// Returns FormatUnknown for an empty or unrecognised hint.
func ParseFormat(hint string) Format {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(hint), ".")) {
	case "delimited", "csv", "tsv":
		return FormatDelimited
	case "spreadsheet", "excel", "xlsx", "xlsm", "xls":
		return FormatSpreadsheet
	case "plaintext", "text", "txt":
		return FormatPlainText
	case "markup", "html", "htm", "xhtml", "xml":
		return FormatMarkup
	default:
		return FormatUnknown
	}
}

// Magic numbers for container formats.
var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// DetectFormat picks a format from a file name and the first bytes of its content.
// Content signatures win over the extension for binary containers;
// otherwise the extension decides and markup is sniffed as a last resort.
func DetectFormat(name string, head []byte) Format {
	if bytes.HasPrefix(head, zipMagic) || bytes.HasPrefix(head, oleMagic) {
		return FormatSpreadsheet
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range AllFormats() {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}

	if looksLikeMarkup(head) {
		return FormatMarkup
	}
	return FormatUnknown
}

// IsLegacyWorkbook reports whether head is an OLE2 compound document (.xls).
func IsLegacyWorkbook(head []byte) bool {
	return bytes.HasPrefix(head, oleMagic)
}

func looksLikeMarkup(head []byte) bool {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, utf8BOM), " \t\r\n")
	if len(trimmed) < 2 || trimmed[0] != '<' {
		return false
	}
	c := trimmed[1]
	return c == '!' || c == '?' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
