// Package domain defines the core entities for linkcheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Candidate: A raw string pulled from a source, with its Location
//   - ValidationPolicy: The rules a URL must satisfy
//   - ClassifiedRecord: The validator's verdict for one Candidate
//   - RunState: The live, lock-guarded state of one validation run
//   - RunResult: The final aggregate of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
