package faults

import "errors"

type ErrorCategory string

const (
	ValidationError      ErrorCategory = "ValidationError"
	NotFoundError        ErrorCategory = "NotFoundError"
	InvalidDocumentError ErrorCategory = "InvalidDocumentError"
	MalformedTextError   ErrorCategory = "MalformedTextError"
	DecodeError          ErrorCategory = "DecodeError"
	InternalError        ErrorCategory = "InternalError"
)

// TypedError is the error shape shared by every package. Path, when set, names
// the file or tree the failure belongs to.
type TypedError struct {
	Category ErrorCategory
	Path     string
	Message  string
	Cause    error
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}

	text := e.describe()
	if e.Path != "" {
		return e.Path + ": " + text
	}
	return text
}

func (e *TypedError) describe() string {
	if e.Message != "" && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

func NewPathError(category ErrorCategory, path string, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Path:     path,
		Message:  message,
		Cause:    cause,
	}
}

func IsCategory(err error, category ErrorCategory) bool {
	actual, ok := CategoryOf(err)
	return ok && actual == category
}

func CategoryOf(err error) (ErrorCategory, bool) {
	if err == nil {
		return "", false
	}

	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return "", false
	}
	return typedErr.Category, true
}

// CountByCategory tallies typed errors; untyped errors are counted as InternalError.
func CountByCategory(errs []error) map[ErrorCategory]int {
	counts := make(map[ErrorCategory]int)
	for _, err := range errs {
		if err == nil {
			continue
		}
		category, ok := CategoryOf(err)
		if !ok {
			category = InternalError
		}
		counts[category]++
	}
	return counts
}
