package core

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// CancelToken carries a cooperative cancellation request to a running job.
// Setting it never interrupts work in flight; stages observe it at their
// safe points through the Reporter.
type CancelToken struct {
	requested atomic.Bool
}

// Cancel requests cancellation. Calling it more than once is harmless.
func (t *CancelToken) Cancel() { t.requested.Store(true) }

// Cancelled reports whether cancellation was requested.
func (t *CancelToken) Cancelled() bool { return t.requested.Load() }

// Err returns ErrCancelled once cancellation was requested.
func (t *CancelToken) Err() error {
	if t.Cancelled() {
		return ErrCancelled
	}
	return nil
}

// Reporter publishes progress for one job. Every call is a safe point: when
// the job's token is set, the call records nothing and returns ErrCancelled.
type Reporter struct {
	jobID  string
	reg    JobRegistry
	token  *CancelToken
	logger *slog.Logger
	stage  string
}

func newReporter(jobID string, reg JobRegistry, token *CancelToken, logger *slog.Logger) *Reporter {
	return &Reporter{jobID: jobID, reg: reg, token: token, logger: logger}
}

// Stage marks name as the active stage.
func (r *Reporter) Stage(name string) error {
	var cancelled bool
	_, err := r.reg.Update(r.jobID, func(j *Job) {
		if r.token.Cancelled() {
			cancelled = true
			return
		}
		j.CurrentStage = name
	})
	if err != nil {
		return err
	}
	if cancelled {
		return ErrCancelled
	}
	r.stage = name
	r.logger.Info("stage started", "stage", name)
	return nil
}

// Update appends a progress message to the job.
//
// The token is read under the registry lock, and RequestCancel sets it under
// the same lock, so no message lands after a cancellation was accepted.
func (r *Reporter) Update(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var cancelled bool
	_, err := r.reg.Update(r.jobID, func(j *Job) {
		if r.token.Cancelled() {
			cancelled = true
			return
		}
		j.Message = msg
		j.Messages = append(j.Messages, msg)
	})
	if err != nil {
		return err
	}
	if cancelled {
		return ErrCancelled
	}
	r.logger.Info(msg, "stage", r.stage)
	return nil
}

// Check is a safe point that publishes nothing. It satisfies SafePoint.
func (r *Reporter) Check() error { return r.token.Err() }

// CurrentStage returns the active stage name.
func (r *Reporter) CurrentStage() string { return r.stage }
