// Package memory provides in-memory implementations of driven ports.
// They keep nothing across process restarts and are used when run history
// is disabled and in tests.
package memory
