package record

import (
	"errors"
	"fmt"
)

// Code categorizes errors raised while ingesting and deriving records.
type Code string

const (
	// CodeFetchFailed indicates a loader or transport failure. It surfaces
	// as the error status of the affected collection key.
	CodeFetchFailed Code = "FETCH_FAILED"

	// CodeValidation indicates a fetched row failed its shape check. The
	// row is dropped; the rest of the batch is kept.
	CodeValidation Code = "VALIDATION_FAILED"

	// CodeMissingDependency indicates a join or aggregation referenced an
	// id absent from a dependency. The missing side degrades to defaults
	// and the error is only ever logged, never returned to callers.
	CodeMissingDependency Code = "MISSING_DEPENDENCY"
)

// Error is the structured error type shared by the ingestion and
// derivation layers.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Kind is the record kind involved, if any.
	Kind Kind

	// Key identifies the collection key or record identity involved.
	Key string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Kind != KindUnknown {
		msg += fmt.Sprintf(" (kind=%s", e.Kind)
		if e.Key != "" {
			msg += ", key=" + e.Key
		}
		msg += ")"
	} else if e.Key != "" {
		msg += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewFetchError wraps a loader failure for the given collection key.
func NewFetchError(key string, err error) *Error {
	return &Error{
		Code:    CodeFetchFailed,
		Message: "fetch failed",
		Key:     key,
		Err:     err,
	}
}

// NewValidationError reports a row of the given kind that failed its
// shape check.
func NewValidationError(kind Kind, format string, args ...any) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
	}
}

// NewMissingDependencyError reports a reference to an id absent from a
// dependency collection of the given kind.
func NewMissingDependencyError(kind Kind, key string) *Error {
	return &Error{
		Code:    CodeMissingDependency,
		Message: "referenced record not found",
		Kind:    kind,
		Key:     key,
	}
}

// IsFetchError reports whether err is a fetch failure.
func IsFetchError(err error) bool {
	return hasCode(err, CodeFetchFailed)
}

// IsValidationError reports whether err is a row validation failure.
func IsValidationError(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsMissingDependency reports whether err is a missing dependency.
func IsMissingDependency(err error) bool {
	return hasCode(err, CodeMissingDependency)
}

func hasCode(err error, code Code) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
