package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      Location
		expected string
	}{
		{"csv cell", TabularAt(3, 2), "row 3, column 2"},
		{"sheet cell", Location{Kind: LocationTabular, Sheet: "Links", Row: 3, Column: 2, Cell: "B3"}, "Links!B3"},
		{"cell without sheet", Location{Kind: LocationTabular, Cell: "AA1"}, "AA1"},
		{"line", LineAt(4), "line 4"},
		{"markup", MarkupAt("img", "src", 1), "<img src> #1"},
		{"zero value", Location{}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.String())
		})
	}
}

func TestTruncate(t *testing.T) {
	long := "https://example.com/a/very/long/path/that/keeps/going/and/going"

	assert.Equal(t, "short", Truncate("  short  ", 50))
	assert.Equal(t, long[:50]+"...", Truncate(long, 50))
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 5))
	assert.Equal(t, long, Truncate(long, 0))
}

func TestClassifiedRecord_Constructors(t *testing.T) {
	c := Candidate{Raw: "http://a.com", Location: LineAt(1)}

	valid := Valid(c, "http://a.com")
	assert.True(t, valid.IsValid())
	assert.Empty(t, valid.Reason)
	assert.Equal(t, "http://a.com", valid.Normalized)

	invalid := Invalid(c, ReasonMalformedHost)
	assert.False(t, invalid.IsValid())
	assert.Empty(t, invalid.Normalized)
	assert.Equal(t, "Malformed host", invalid.Reason.Description())
}

func TestAllRejectReasons_HaveDescriptions(t *testing.T) {
	for _, r := range AllRejectReasons() {
		assert.NotEqual(t, "Unknown", r.Description(), r.String())
	}
}
