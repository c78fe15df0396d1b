// Package source provides domain.SourceDescriptor implementations backed by
// the local file system or in-memory content, and a file watcher used to
// re-run checks when a source changes.
package source
