package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunInProgress indicates the run has not reached a terminal state yet.
	ErrRunInProgress = errors.New("run in progress")

	// Source Errors.

	// ErrSourceNotFound indicates the source does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceEmpty indicates the source has zero length.
	ErrSourceEmpty = errors.New("source is empty")

	// ErrSourceTooLarge indicates the source exceeds the configured size ceiling.
	ErrSourceTooLarge = errors.New("source too large")

	// ErrSourceUnreadable indicates the source exists but cannot be read.
	ErrSourceUnreadable = errors.New("source unreadable")

	// Format Errors.

	// ErrUnsupportedFormat indicates no extractor recognises the source.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrFormat indicates a structural failure the extractor cannot recover from.
	ErrFormat = errors.New("format error")

	// Run Errors.

	// ErrTimeout indicates the run exceeded its processing timeout.
	ErrTimeout = errors.New("processing timeout")

	// ErrCancelled indicates the run was cancelled by its owner.
	// Cancellation is not a failure.
	ErrCancelled = errors.New("cancelled")
)

// ErrorKind groups run-level errors by where they originate.
type ErrorKind string

// Error kinds.
const (
	KindSource   ErrorKind = "source"
	KindFormat   ErrorKind = "format"
	KindTimeout  ErrorKind = "timeout"
	KindInternal ErrorKind = "internal"
)

// Code is a stable, machine-readable reason attached to every terminal state.
type Code string

// Reason codes.
const (
	CodeCompleted         Code = "completed"
	CodeCancelled         Code = "cancelled"
	CodeFileNotFound      Code = "file_not_found"
	CodeFileEmpty         Code = "file_empty"
	CodeFileTooLarge      Code = "file_too_large"
	CodeFileUnreadable    Code = "file_unreadable"
	CodeUnsupportedFormat Code = "unsupported_format"
	CodeFormatError       Code = "format_error"
	CodeIOError           Code = "io_error"
	CodeTimeout           Code = "timeout"
)

// MessageFor returns the default user-facing message for a code.
func MessageFor(code Code) string {
	switch code {
	case CodeCompleted:
		return "Link validation completed."
	case CodeCancelled:
		return "Processing was cancelled."
	case CodeFileNotFound:
		return "The selected file could not be found."
	case CodeFileEmpty:
		return "The selected file is empty."
	case CodeFileTooLarge:
		return "File is too large."
	case CodeFileUnreadable:
		return "The selected file could not be read."
	case CodeUnsupportedFormat:
		return "Unsupported file format."
	case CodeFormatError:
		return "The file structure could not be read."
	case CodeIOError:
		return "An error occurred while processing the file."
	case CodeTimeout:
		return "Processing took too long and was stopped."
	default:
		return "An unexpected error occurred."
	}
}

// RunError is a run-level failure carrying a reason code, a human message
// and optional context. It wraps one of the sentinel errors above.
type RunError struct {
	Kind    ErrorKind
	Code    Code
	Message string
	Context map[string]any
	Err     error
}

// NewRunError creates a RunError with the default message for code.
func NewRunError(kind ErrorKind, code Code, err error) *RunError {
	return &RunError{
		Kind:    kind,
		Code:    code,
		Message: MessageFor(code),
		Err:     err,
	}
}

// With returns the error with a context entry added.
func (e *RunError) With(key string, value any) *RunError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

// Unwrap returns the wrapped error.
func (e *RunError) Unwrap() error {
	return e.Err
}

// AsRunError converts any error into a RunError.
// Errors that are not already RunErrors are classified by their sentinel.
func AsRunError(err error) *RunError {
	if err == nil {
		return nil
	}
	var re *RunError
	if errors.As(err, &re) {
		return re
	}

	switch {
	case errors.Is(err, ErrSourceNotFound):
		return NewRunError(KindSource, CodeFileNotFound, err)
	case errors.Is(err, ErrSourceEmpty):
		return NewRunError(KindSource, CodeFileEmpty, err)
	case errors.Is(err, ErrSourceTooLarge):
		return NewRunError(KindSource, CodeFileTooLarge, err)
	case errors.Is(err, ErrSourceUnreadable):
		return NewRunError(KindSource, CodeFileUnreadable, err)
	case errors.Is(err, ErrUnsupportedFormat):
		return NewRunError(KindFormat, CodeUnsupportedFormat, err)
	case errors.Is(err, ErrFormat):
		return NewRunError(KindFormat, CodeFormatError, err)
	case errors.Is(err, ErrTimeout):
		return NewRunError(KindTimeout, CodeTimeout, err)
	default:
		return NewRunError(KindInternal, CodeIOError, err)
	}
}
