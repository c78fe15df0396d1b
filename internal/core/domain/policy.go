package domain

import (
	"strings"
	"time"
)

// Default ceilings and policy values.
const (
	DefaultMaxFileSize       int64 = 100 * 1024 * 1024
	DefaultMaxRows                 = 50000
	DefaultMaxColumns              = 200
	DefaultMaxInvalidRecords       = 10000
	DefaultTimeout                 = 5 * time.Minute
	DefaultMinProgressGap          = 100 * time.Millisecond
	DefaultMaxProgressGap          = 2 * time.Second
)

// ValidationPolicy is the set of rules controlling which URL shapes are accepted.
// A policy is a value: it is copied into each run and never mutated.
type ValidationPolicy struct {
	// AllowedSchemes lists accepted schemes. Matching is case-insensitive.
	AllowedSchemes []string

	// AllowLocalhost accepts the single-label host "localhost". Dotted names
	// such as "app.localhost" are ordinary domains and are not gated by it.
	AllowLocalhost bool

	// AllowIPLiterals accepts IPv4 and IPv6 literal hosts.
	AllowIPLiterals bool

	// AllowInternalDomains accepts single-label hosts such as "intranet".
	AllowInternalDomains bool
}

// DefaultValidationPolicy returns the default policy: http and https,
// with localhost, IP literals and internal domains all accepted.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		AllowedSchemes:       []string{"http", "https"},
		AllowLocalhost:       true,
		AllowIPLiterals:      true,
		AllowInternalDomains: true,
	}
}

// AllowsScheme reports whether scheme is in the allowed set.
func (p ValidationPolicy) AllowsScheme(scheme string) bool {
	for _, s := range p.AllowedSchemes {
		if strings.EqualFold(strings.TrimSpace(s), scheme) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with p.
func (p ValidationPolicy) Clone() ValidationPolicy {
	c := p
	c.AllowedSchemes = append([]string(nil), p.AllowedSchemes...)
	return c
}

// Limits bounds the resources a single run may consume.
type Limits struct {
	// MaxFileSize is the largest accepted source, in bytes. Zero disables the check.
	MaxFileSize int64

	// MaxRows caps the rows read from tabular sources. Zero means unlimited.
	MaxRows int

	// MaxColumns caps the columns read per row. Zero means unlimited.
	MaxColumns int

	// MaxInvalidRecords caps the invalid records retained for reporting.
	MaxInvalidRecords int

	// Timeout bounds the wall-clock duration of a run. Zero disables it.
	Timeout time.Duration
}

// DefaultLimits returns the default resource ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:       DefaultMaxFileSize,
		MaxRows:           DefaultMaxRows,
		MaxColumns:        DefaultMaxColumns,
		MaxInvalidRecords: DefaultMaxInvalidRecords,
		Timeout:           DefaultTimeout,
	}
}

// RowsExceeded reports whether reading row n (1-based) would pass the row ceiling.
func (l Limits) RowsExceeded(n int) bool {
	return l.MaxRows > 0 && n > l.MaxRows
}

// ColumnsExceeded reports whether column n (1-based) would pass the column ceiling.
func (l Limits) ColumnsExceeded(n int) bool {
	return l.MaxColumns > 0 && n > l.MaxColumns
}

// ProgressSettings bounds the wall-clock gap between progress events.
type ProgressSettings struct {
	// MinInterval is the shortest gap between two progress events.
	MinInterval time.Duration

	// MaxInterval is the longest gap before an event is forced.
	MaxInterval time.Duration
}

// DefaultProgressSettings returns the default progress bounds.
func DefaultProgressSettings() ProgressSettings {
	return ProgressSettings{
		MinInterval: DefaultMinProgressGap,
		MaxInterval: DefaultMaxProgressGap,
	}
}
