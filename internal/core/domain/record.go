package domain

// Verdict is the Valid/Invalid classification of a Candidate.
type Verdict string

// Verdicts.
const (
	VerdictValid   Verdict = "valid"
	VerdictInvalid Verdict = "invalid"
)

// RejectReason explains why a Candidate was classified Invalid.
type RejectReason string

// Reject reasons, in the order the validator checks them.
const (
	ReasonEmpty                  RejectReason = "empty"
	ReasonMissingScheme          RejectReason = "missing_scheme"
	ReasonDisallowedScheme       RejectReason = "disallowed_scheme"
	ReasonEmptyAuthority         RejectReason = "empty_authority"
	ReasonMalformedHost          RejectReason = "malformed_host"
	ReasonIPLiteralDisallowed    RejectReason = "ip_literal_disallowed"
	ReasonInternalHostDisallowed RejectReason = "internal_host_disallowed"
)

// AllRejectReasons lists every reason in check order.
func AllRejectReasons() []RejectReason {
	return []RejectReason{
		ReasonEmpty,
		ReasonMissingScheme,
		ReasonDisallowedScheme,
		ReasonEmptyAuthority,
		ReasonMalformedHost,
		ReasonIPLiteralDisallowed,
		ReasonInternalHostDisallowed,
	}
}

// String returns the string representation.
func (r RejectReason) String() string {
	return string(r)
}

// Description returns a human-readable description of the reason.
func (r RejectReason) Description() string {
	switch r {
	case ReasonEmpty:
		return "Empty value"
	case ReasonMissingScheme:
		return "Missing scheme (expected e.g. https://)"
	case ReasonDisallowedScheme:
		return "Scheme not allowed"
	case ReasonEmptyAuthority:
		return "Missing host"
	case ReasonMalformedHost:
		return "Malformed host"
	case ReasonIPLiteralDisallowed:
		return "IP address hosts not allowed"
	case ReasonInternalHostDisallowed:
		return "Internal host not allowed"
	default:
		return "Unknown"
	}
}

// ClassifiedRecord is the validator's verdict for one Candidate.
// Records are never mutated after creation.
type ClassifiedRecord struct {
	// Candidate is the input that was classified.
	Candidate Candidate

	// Verdict is Valid or Invalid.
	Verdict Verdict

	// Normalized is the canonical form. Set only when Valid.
	Normalized string

	// Reason explains an Invalid verdict. Empty when Valid.
	Reason RejectReason
}

// Valid returns a Valid record.
func Valid(c Candidate, normalized string) ClassifiedRecord {
	return ClassifiedRecord{Candidate: c, Verdict: VerdictValid, Normalized: normalized}
}

// Invalid returns an Invalid record.
func Invalid(c Candidate, reason RejectReason) ClassifiedRecord {
	return ClassifiedRecord{Candidate: c, Verdict: VerdictInvalid, Reason: reason}
}

// IsValid returns true if the verdict is Valid.
func (r ClassifiedRecord) IsValid() bool {
	return r.Verdict == VerdictValid
}
