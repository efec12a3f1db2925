package ai

import (
	"errors"
	"fmt"
)

// ErrEmptyTitle is returned when a subtask suggestion is requested for a
// blank title.
var ErrEmptyTitle = errors.New("task title is empty")

// ValidationError reports a model response that could not be parsed or did
// not match the expected shape.
type ValidationError struct {
	Path   string // JSON path of the offending value, if known
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := "invalid model response"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// GenerationError reports that the model could not produce a usable answer:
// the endpoint was unreachable, returned a non-success status, or returned
// nothing.
type GenerationError struct {
	StatusCode int // HTTP status from the endpoint, 0 if none was received
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IntegrityMismatchError reports a re-prioritization answer that did not map
// one-to-one onto the submitted tasks. It never leaves the package as an
// error; it only appears as the rejection reason of an Outcome.
type IntegrityMismatchError struct {
	Expected int
	Received int
	Matched  int
}

func (e *IntegrityMismatchError) Error() string {
	return fmt.Sprintf("integrity mismatch: expected %d tasks, received %d, matched %d",
		e.Expected, e.Received, e.Matched)
}

var errNoSubtasks = errors.New("model returned no subtasks")

// asGenerationError keeps a *GenerationError as is and wraps anything else a
// Generator returns, so upstream failures always surface with one type.
func asGenerationError(err error) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &GenerationError{Err: err}
}
