package common

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crmarques/snapdiff/faults"
)

// ErrDifferencesFound is returned by diff --exit-code when the trees differ.
var ErrDifferencesFound = errors.New("differences found")

// PartialResultError reports that a command produced output but accumulated
// errors on the way.
type PartialResultError struct {
	Count int
}

func (e *PartialResultError) Error() string {
	if e.Count == 1 {
		return "completed with 1 error"
	}
	return "completed with " + strconv.Itoa(e.Count) + " errors"
}

func ValidationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

// ReportErrors prints accumulated errors to stderr and turns them into the
// command's result: a missing path is returned as is, anything else becomes
// a PartialResultError.
func ReportErrors(command *cobra.Command, errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	for _, err := range errs {
		_, _ = fmt.Fprintf(command.ErrOrStderr(), "error: %v\n", err)
	}
	for _, err := range errs {
		if faults.IsCategory(err, faults.NotFoundError) {
			return err
		}
	}
	return &PartialResultError{Count: len(errs)}
}
