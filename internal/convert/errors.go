package convert

import (
	"fmt"
	"strings"
)

// MissingInputError reports a year directory with no matching CSV files. It
// is fatal for the whole run regardless of the failure policy.
type MissingInputError struct {
	Dir string
}

func (e *MissingInputError) Error() string {
	return "No CSV files found in: " + e.Dir
}

// FileError wraps any failure while converting one input file.
type FileError struct {
	Source string
	Output string
	Err    error
}

func (e *FileError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("convert %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("convert %s -> %s: %v", e.Source, e.Output, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// BatchError collects the per-file failures of a run in continue mode.
type BatchError struct {
	Failures []*FileError
}

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d file(s) failed: %s", len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}
