package report

import (
	"time"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// DisplayWidth is how many characters of a candidate are shown in
// human-readable reports before it is cut with "...".
const DisplayWidth = 50

// document is the structured form shared by the JSON and YAML writers.
type document struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Source     string    `json:"source" yaml:"source"`
	Format     string    `json:"format" yaml:"format"`
	Status     string    `json:"status" yaml:"status"`
	Code       string    `json:"code" yaml:"code"`
	Message    string    `json:"message,omitempty" yaml:"message,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Duration   string    `json:"duration" yaml:"duration"`

	Summary summary        `json:"summary" yaml:"summary"`
	Reasons map[string]int `json:"reasons,omitempty" yaml:"reasons,omitempty"`

	InvalidRecords []record `json:"invalid_records" yaml:"invalid_records"`
}

type summary struct {
	Processed      int  `json:"processed" yaml:"processed"`
	Valid          int  `json:"valid" yaml:"valid"`
	Invalid        int  `json:"invalid" yaml:"invalid"`
	Skipped        int  `json:"skipped" yaml:"skipped"`
	Truncated      bool `json:"truncated" yaml:"truncated"`
	InvalidDropped int  `json:"invalid_dropped" yaml:"invalid_dropped"`
}

type record struct {
	Raw      string   `json:"raw" yaml:"raw"`
	Reason   string   `json:"reason" yaml:"reason"`
	Location location `json:"location" yaml:"location"`
}

type location struct {
	Kind         string `json:"kind" yaml:"kind"`
	Sheet        string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Row          int    `json:"row,omitempty" yaml:"row,omitempty"`
	Column       int    `json:"column,omitempty" yaml:"column,omitempty"`
	Cell         string `json:"cell,omitempty" yaml:"cell,omitempty"`
	Line         int    `json:"line,omitempty" yaml:"line,omitempty"`
	Tag          string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Attribute    string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	ElementIndex *int   `json:"element_index,omitempty" yaml:"element_index,omitempty"`
}

func newDocument(r *domain.RunResult) document {
	doc := document{
		RunID:      r.RunID,
		Source:     r.Source,
		Format:     r.Format.String(),
		Status:     r.Status.String(),
		Code:       string(r.Code),
		Message:    r.Message,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Duration:   r.Duration.Round(time.Millisecond).String(),
		Summary: summary{
			Processed:      r.TotalProcessed,
			Valid:          r.Valid,
			Invalid:        r.Invalid,
			Skipped:        r.Skipped,
			Truncated:      r.Truncated,
			InvalidDropped: r.InvalidDropped,
		},
		InvalidRecords: make([]record, 0, len(r.InvalidRecords)),
	}

	if counts := r.ReasonCounts(); len(counts) > 0 {
		doc.Reasons = make(map[string]int, len(counts))
		for reason, n := range counts {
			doc.Reasons[reason.String()] = n
		}
	}

	for i := range r.InvalidRecords {
		rec := r.InvalidRecords[i]
		doc.InvalidRecords = append(doc.InvalidRecords, record{
			Raw:      rec.Candidate.Raw,
			Reason:   rec.Reason.String(),
			Location: newLocation(rec.Candidate.Location),
		})
	}
	return doc
}

func newLocation(l domain.Location) location {
	loc := location{
		Kind:      string(l.Kind),
		Sheet:     l.Sheet,
		Row:       l.Row,
		Column:    l.Column,
		Cell:      l.Cell,
		Line:      l.Line,
		Tag:       l.Tag,
		Attribute: l.Attribute,
	}
	// Element indices are 0-based, so zero is meaningful for markup.
	if l.Kind == domain.LocationMarkup {
		idx := l.ElementIndex
		loc.ElementIndex = &idx
	}
	return loc
}
