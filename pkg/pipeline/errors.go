package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingInput is matched by every MissingInputError.
var ErrMissingInput = errors.New("missing input")

// MissingInputError reports a stage whose declared input is absent or blank.
type MissingInputError struct {
	Stage string
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("stage %s: missing input field %q", e.Stage, e.Field)
}

// Is matches ErrMissingInput.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// StageError reports a stage whose transform call failed. Index is zero-based.
type StageError struct {
	Stage string
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (#%d) failed: %v", e.Stage, e.Index+1, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ValidationError lists configuration problems found before any stage runs.
type ValidationError struct {
	Pipeline string
	Problems []string
}

func (e *ValidationError) Error() string {
	name := e.Pipeline
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid pipeline %s: %s", name, strings.Join(e.Problems, "; "))
}
