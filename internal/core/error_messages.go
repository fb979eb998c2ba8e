package core

// error_messages.go maps pipeline errors to user-facing messages with codes
// for support reference.
//
// # Job Errors (JOB001-JOB099)
//
//	JOB001 - Pipeline busy: another run holds the pipeline lock
//	JOB002 - Job not found: unknown or expired job id
//	JOB003 - Not cancellable: the job is not in progress
//	JOB004 - Invalid request: stage range outside the pipeline
//	JOB005 - Cancelled: the run was stopped on request
//
// # Stage Errors (STG001-STG099)
//
//	STG001 - Stage failed: a stage hit an unexpected error on a file
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Unknown year: the file name carries no known review year token
//	FILE002 - Invalid table: the file is not a review sheet or has no header
//
// # Result Errors (RES001-RES099)
//
//	RES001 - Result not found: the requested archive does not exist
//
// # Database Errors (DB004-DB007)
//
// Raised by the optional load stage and matched on the driver's text.
//
// # Default Error (ERR000)
//
// Typed errors are classified with errors.Is and errors.As first. Anything
// else is matched case-insensitively against errorPatterns; the first match
// wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgPipelineBusy = UserMessage{
		Message: "Another pipeline run is in progress",
		Action:  "Wait for the running job to finish, then start again",
		Code:    "JOB001",
	}
	msgJobNotFound = UserMessage{
		Message: "Job not found",
		Action:  "Check the job id; finished jobs expire after the retention period",
		Code:    "JOB002",
	}
	msgNotCancellable = UserMessage{
		Message: "Only a running job can be cancelled",
		Action:  "Check the job status",
		Code:    "JOB003",
	}
	msgInvalidRequest = UserMessage{
		Message: "The requested stage range is not valid",
		Action:  "Choose start and end stages between 1 and 4",
		Code:    "JOB004",
	}
	msgJobCancelled = UserMessage{
		Message: "The pipeline was cancelled",
		Action:  "Start a new run when ready, beginning at the stage that was interrupted",
		Code:    "JOB005",
	}
	msgStageFailed = UserMessage{
		Message: "A pipeline stage failed",
		Action:  "Check the error message and logs, fix the input, then re-run from that stage",
		Code:    "STG001",
	}
	msgResultNotFound = UserMessage{
		Message: "Result file not found",
		Action:  "Use the results_url reported by a completed job",
		Code:    "RES001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps error text (case-insensitive) to user messages. Order
// matters: more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "no review year",
		msg: UserMessage{
			Message: "The file name does not identify a review year",
			Action:  "Rename the file or add its token to the year map file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "not a review sheet",
		msg: UserMessage{
			Message: "The table is not a review sheet",
			Action:  "Check that the sheet carries the ministry, program name and program number columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "table has no header row",
		msg: UserMessage{
			Message: "The table is empty",
			Action:  "Re-export the sheet with its header row",
			Code:    "FILE002",
		},
	},

	// Database connection errors from the load stage.
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Re-run the load stage or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
}

// defaultMessage is returned when no specific pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
//	_, err := svc.Start(ctx, req)
//	msg := MapError(err)
//	// msg.Code == "JOB001" when another job is running
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrPipelineBusy):
		return msgPipelineBusy
	case errors.Is(err, ErrJobNotFound):
		return msgJobNotFound
	case errors.Is(err, ErrNotCancellable):
		return msgNotCancellable
	case errors.Is(err, ErrInvalidRequest):
		return msgInvalidRequest
	case errors.Is(err, ErrCancelled):
		return msgJobCancelled
	case errors.Is(err, ErrResultNotFound):
		return msgResultNotFound
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var fe *FatalStageError
	if errors.As(err, &fe) {
		return msgStageFailed
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
