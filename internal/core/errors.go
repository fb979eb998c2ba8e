package core

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled unwinds a job after a cancellation request was observed.
	// It is not a failure.
	ErrCancelled = errors.New("pipeline cancelled by request")

	// ErrPipelineBusy is returned by Start when another job holds the run lock.
	ErrPipelineBusy = errors.New("pipeline busy: another job is in progress")

	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = errors.New("job not found")

	// ErrNotCancellable is returned when cancelling a job that is not running.
	ErrNotCancellable = errors.New("job is not in progress")

	// ErrInvalidRequest is returned for stage ranges outside the pipeline.
	ErrInvalidRequest = errors.New("invalid pipeline request")

	// ErrResultNotFound is returned when a results file does not exist.
	ErrResultNotFound = errors.New("result file not found")
)

// SkippableInputError marks a source file that failed a structural
// precondition. The file is skipped and the stage continues.
type SkippableInputError struct {
	File   string
	Reason string
	Err    error
}

func (e *SkippableInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skip %s: %s: %v", e.File, e.Reason, e.Err)
	}
	return fmt.Sprintf("skip %s: %s", e.File, e.Reason)
}

func (e *SkippableInputError) Unwrap() error { return e.Err }

// Skip builds a SkippableInputError.
func Skip(file, reason string, err error) error {
	return &SkippableInputError{File: file, Reason: reason, Err: err}
}

// IsSkippable reports whether err marks a skippable input.
func IsSkippable(err error) bool {
	var s *SkippableInputError
	return errors.As(err, &s)
}

// FatalStageError aborts the job. It records the stage active at the time
// and, when known, the file being processed.
type FatalStageError struct {
	Stage string
	File  string
	Err   error
}

func (e *FatalStageError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("stage %q: %s: %v", e.Stage, e.File, e.Err)
	}
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *FatalStageError) Unwrap() error { return e.Err }

// fatal wraps err for stage and file unless it is already a cancellation or
// a FatalStageError.
func fatal(stage, file string, err error) error {
	if err == nil || errors.Is(err, ErrCancelled) {
		return err
	}
	var fe *FatalStageError
	if errors.As(err, &fe) {
		return err
	}
	return &FatalStageError{Stage: stage, File: file, Err: err}
}
