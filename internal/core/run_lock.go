package core

// run_lock.go gates pipeline execution to one job per process.
//
// Acquisition never waits: a job that finds the lock held fails immediately
// instead of queueing behind the running job.

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// RunLock is a non-blocking single-holder lock keyed by job id.
type RunLock struct {
	sem *semaphore.Weighted

	mu     sync.RWMutex
	holder string
	since  time.Time
}

// NewRunLock returns an unheld lock.
func NewRunLock() *RunLock {
	return &RunLock{sem: semaphore.NewWeighted(1)}
}

var defaultRunLock = NewRunLock()

// DefaultRunLock is the process-wide lock shared by every Service that is
// not given its own.
func DefaultRunLock() *RunLock { return defaultRunLock }

// TryAcquire takes the lock for jobID without blocking.
// The caller MUST call Release once the job ends.
func (l *RunLock) TryAcquire(jobID string) bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.mu.Lock()
	l.holder = jobID
	l.since = time.Now()
	l.mu.Unlock()
	return true
}

// Release frees the lock. Must be called exactly once per successful TryAcquire.
func (l *RunLock) Release() {
	l.mu.Lock()
	l.holder = ""
	l.since = time.Time{}
	l.mu.Unlock()

	l.sem.Release(1)
}

// Holder returns the id of the job holding the lock, or "" when free.
func (l *RunLock) Holder() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.holder
}

// WaitForRelease blocks until the lock is free or ctx is done.
// Service.Shutdown uses it to wait for a cancelled job to unwind.
func (l *RunLock) WaitForRelease(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.sem.Release(1)
	return nil
}

// RunLockStatus is a snapshot of the lock.
type RunLockStatus struct {
	Held   bool       `json:"held"`
	Holder string     `json:"holder,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
}

// Status returns the current lock state for monitoring.
func (l *RunLock) Status() RunLockStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.holder == "" {
		return RunLockStatus{}
	}
	since := l.since
	return RunLockStatus{Held: true, Holder: l.holder, Since: &since}
}
