package driven

import "github.com/custodia-labs/linkcheck/internal/core/domain"

// URLValidator classifies candidates.
// Implementations must be pure: the same inputs always give the same record.
type URLValidator interface {
	Validate(candidate domain.Candidate, policy domain.ValidationPolicy) domain.ClassifiedRecord
}
