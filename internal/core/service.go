package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ReviewSheet/internal/logging"
	"github.com/JonMunkholm/ReviewSheet/internal/lookup"
	"github.com/JonMunkholm/ReviewSheet/internal/textnorm"
)

// DefaultJobRetention is how long finished jobs stay queryable.
const DefaultJobRetention = 24 * time.Hour

// archiveStage labels the final archive step in Job.CurrentStage.
const archiveStage = "archive"

// Options configures a Service. Zero fields take defaults.
type Options struct {
	Dirs      Dirs
	Stages    []Stage
	Registry  JobRegistry
	Lock      *RunLock
	Retention time.Duration
}

// DefaultStages returns the four pipeline stages. Nil arguments take each
// stage's default; a nil loader makes stage four a no-op.
func DefaultStages(conv Converter, norm *textnorm.Normalizer, years *lookup.YearMap, loader TableLoader) []Stage {
	return []Stage{
		NewConvertStage(conv),
		NewNormalizeStage(norm),
		NewBuildStage(years),
		NewLoadStage(loader),
	}
}

// Service runs pipeline jobs and answers job-control queries.
type Service struct {
	dirs      Dirs
	stages    []Stage
	reg       JobRegistry
	lock      *RunLock
	retention time.Duration

	mu     sync.Mutex
	active map[string]*activeJob
	wg     sync.WaitGroup
}

type activeJob struct {
	token *CancelToken
	done  chan struct{}
}

// NewService creates a Service. Jobs share the process-wide run lock unless
// opts.Lock is set.
func NewService(opts Options) *Service {
	if opts.Stages == nil {
		opts.Stages = DefaultStages(nil, nil, nil, nil)
	}
	if opts.Registry == nil {
		opts.Registry = NewMemoryRegistry()
	}
	if opts.Lock == nil {
		opts.Lock = DefaultRunLock()
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultJobRetention
	}

	return &Service{
		dirs:      opts.Dirs,
		stages:    opts.Stages,
		reg:       opts.Registry,
		lock:      opts.Lock,
		retention: opts.Retention,
		active:    make(map[string]*activeJob),
	}
}

// Dirs returns the stage directories.
func (s *Service) Dirs() Dirs { return s.dirs }

// Stages returns the configured stages in ascending order.
func (s *Service) Stages() []Stage { return selectStages(s.stages, 0, 0) }

// LockStatus reports which job holds the run lock.
func (s *Service) LockStatus() RunLockStatus { return s.lock.Status() }

// Validate checks a request against the configured stages.
func (s *Service) Validate(req Request) error {
	last := 0
	for _, st := range s.stages {
		last = max(last, st.Number())
	}

	switch {
	case req.StartStage < 0 || req.StartStage > last:
		return fmt.Errorf("%w: start_stage %d outside 1..%d", ErrInvalidRequest, req.StartStage, last)
	case req.EndStage < 0 || req.EndStage > last:
		return fmt.Errorf("%w: end_stage %d outside 1..%d", ErrInvalidRequest, req.EndStage, last)
	case req.StartStage > 0 && req.EndStage > 0 && req.EndStage < req.StartStage:
		return fmt.Errorf("%w: end_stage %d before start_stage %d", ErrInvalidRequest, req.EndStage, req.StartStage)
	}
	return nil
}

// Start creates a job and runs it in the background.
//
// When another job holds the run lock, the new job is recorded as failed
// and Start returns its id together with ErrPipelineBusy. No stage runs.
func (s *Service) Start(ctx context.Context, req Request) (string, error) {
	if err := s.Validate(req); err != nil {
		return "", err
	}

	now := time.Now()
	job := Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		Message:   msgPending,
		Request:   req,
		CreatedAt: now,
	}
	s.reg.Put(job)

	logger := logging.WithFields(ctx, "job_id", job.ID)

	if !s.lock.TryAcquire(job.ID) {
		s.reg.CompareAndSwapStatus(job.ID, StatusPending, StatusFailed, func(j *Job) {
			finished := time.Now()
			j.Message = msgBusy
			j.ErrorMessage = msgBusy
			j.FinishedAt = &finished
		})
		logger.Warn("pipeline start denied", "holder", s.lock.Holder())
		return job.ID, ErrPipelineBusy
	}

	aj := &activeJob{token: &CancelToken{}, done: make(chan struct{})}
	s.mu.Lock()
	s.active[job.ID] = aj
	s.mu.Unlock()

	s.reg.CompareAndSwapStatus(job.ID, StatusPending, StatusInProgress, func(j *Job) {
		started := time.Now()
		j.StartedAt = &started
	})

	jobCtx := logging.WithJobID(context.WithoutCancel(ctx), job.ID)

	s.wg.Add(1)
	go s.execute(jobCtx, job.ID, req, aj)

	logger.Info("pipeline started", "start_stage", req.StartStage, "end_stage", req.EndStage, "target_files", len(req.TargetFiles))
	return job.ID, nil
}

func (s *Service) execute(ctx context.Context, id string, req Request, aj *activeJob) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	defer func() {
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()

		s.lock.Release()
		logger.Info("pipeline lock released")
		close(aj.done)
		s.wg.Done()
	}()

	run := &Run{
		JobID:   id,
		Request: req,
		Dirs:    s.dirs,
		Report:  newReporter(id, s.reg, aj.token, logger),
		Logger:  logger,
	}

	archive, archived, err := s.runJob(ctx, run)
	s.finish(id, run, archive, archived, err)

	switch {
	case errors.Is(err, ErrCancelled):
		logger.Warn("pipeline cancelled", "stage", run.Report.CurrentStage(), "duration_ms", time.Since(start).Milliseconds())
	case err != nil:
		logger.Error("pipeline failed", "stage", run.Report.CurrentStage(), "error", err, "duration_ms", time.Since(start).Milliseconds())
	default:
		logger.Info("pipeline completed", "duration_ms", time.Since(start).Milliseconds())
	}
}

// runJob runs the selected stages and the archive step.
func (s *Service) runJob(ctx context.Context, run *Run) (res archiveResult, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &FatalStageError{Stage: run.Report.CurrentStage(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	for _, st := range selectStages(s.stages, run.Request.StartStage, run.Request.EndStage) {
		if err := run.Report.Stage(Label(st)); err != nil {
			return res, false, err
		}
		stageLogger := run.Logger.With("stage", st.Name())
		stageRun := *run
		stageRun.Logger = stageLogger

		if err := st.Run(ctx, &stageRun); err != nil {
			return res, false, fatal(Label(st), "", err)
		}
	}

	if err := run.Report.Stage(archiveStage); err != nil {
		return res, false, err
	}
	if err := run.Report.Update("bundling canonical tables into an archive"); err != nil {
		return res, false, err
	}

	res, ok, err = writeArchive(s.dirs.Processed, run.JobID)
	if err != nil {
		return res, false, fatal(archiveStage, "", err)
	}
	if !ok {
		run.Logger.Warn("no tables to archive", "dir", s.dirs.Processed)
		return res, false, run.Report.Update("no tables to archive; skipping")
	}
	return res, true, run.Report.Update("archive written: %s", res)
}

// finish moves the job to its terminal state. It never appends to the
// progress log.
func (s *Service) finish(id string, run *Run, res archiveResult, archived bool, err error) {
	final := StatusCompleted
	switch {
	case errors.Is(err, ErrCancelled):
		final = StatusCancelled
	case err != nil:
		final = StatusFailed
	}

	s.reg.CompareAndSwapStatus(id, StatusInProgress, final, func(j *Job) {
		finished := time.Now()
		j.FinishedAt = &finished

		switch final {
		case StatusCancelled:
			j.Message = msgCancelled
		case StatusFailed:
			j.Message = msgFailed
			j.ErrorMessage = failureMessage(run.Report.CurrentStage(), err)
		default:
			j.Message = msgCompleted
			if archived {
				j.ResultsFile = res.Name
				j.ResultsURL = ResultsURLPrefix + res.Name
			}
		}
	})
}

func failureMessage(stage string, err error) string {
	var fe *FatalStageError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return (&FatalStageError{Stage: stage, Err: err}).Error()
}

// Status returns a snapshot of job id.
func (s *Service) Status(id string) (Job, error) {
	job, ok := s.reg.Get(id)
	if !ok {
		return Job{}, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	return job, nil
}

// List returns every known job, newest first.
func (s *Service) List() []Job { return s.reg.List() }

// RequestCancel asks an in-progress job to stop at its next safe point.
func (s *Service) RequestCancel(id string) error {
	s.mu.Lock()
	aj := s.active[id]
	s.mu.Unlock()

	var status Status
	_, err := s.reg.Update(id, func(j *Job) {
		status = j.Status
		if j.Status != StatusInProgress || aj == nil {
			return
		}
		j.CancelRequested = true
		j.Message = msgCancelAck
		aj.token.Cancel()
	})
	if errors.Is(err, ErrJobNotFound) {
		return fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	if err != nil {
		return err
	}
	if status != StatusInProgress || aj == nil {
		return fmt.Errorf("%s is %s: %w", id, status, ErrNotCancellable)
	}

	slog.Warn("cancellation requested", "job_id", id)
	return nil
}

// Wait blocks until job id reaches a terminal state or ctx is done, and
// returns the last snapshot.
func (s *Service) Wait(ctx context.Context, id string) (Job, error) {
	s.mu.Lock()
	aj := s.active[id]
	s.mu.Unlock()

	if aj != nil {
		select {
		case <-aj.done:
		case <-ctx.Done():
			job, _ := s.reg.Get(id)
			return job, ctx.Err()
		}
	}
	return s.Status(id)
}

// ResultsPath resolves a result file name inside the processed directory.
// Names that could escape the directory are rejected as not found.
func (s *Service) ResultsPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%q: %w", name, ErrResultNotFound)
	}

	path := filepath.Join(s.dirs.Processed, name)
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return "", fmt.Errorf("%q: %w", name, ErrResultNotFound)
	}
	return path, nil
}

// Shutdown requests cancellation of every running job, waits for the run
// lock to be released and for the job goroutines to exit, or for ctx to be
// done.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.RequestCancel(id); err != nil && !errors.Is(err, ErrNotCancellable) {
			slog.Warn("cancel on shutdown failed", "job_id", id, "error", err)
		}
	}

	// A running job of this service is the lock holder.
	if len(ids) > 0 {
		if err := s.lock.WaitForRelease(ctx); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
