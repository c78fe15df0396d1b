// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Turns a source into a lazy stream of candidates
//   - ExtractorRegistry: Selects the extractor for a detected format
//   - EncodingResolver: Guesses and decodes text encodings
//   - URLValidator: Classifies a candidate under a policy
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Run history persistence. Without it, history is unavailable.
//   - ReportWriter: Result export. Used by driving adapters only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or validator package
package driven
